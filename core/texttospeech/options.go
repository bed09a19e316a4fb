package texttospeech

import "errors"

// ErrNoAudio is returned when synthesis finished without producing samples.
var ErrNoAudio = errors.New("no audio synthesized")

type TextToSpeechOptions struct {
	Voice      string
	SampleRate int
	BaseURL    string
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithVoice(voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if voice != "" {
			o.Voice = voice
		}
	}
}

func WithSampleRate(sampleRate int) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if sampleRate > 0 {
			o.SampleRate = sampleRate
		}
	}
}

// WithBaseURL points the client at another endpoint, mostly for tests.
func WithBaseURL(baseURL string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if baseURL != "" {
			o.BaseURL = baseURL
		}
	}
}
