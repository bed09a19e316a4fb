package speechtotext

import "errors"

// ErrNoSpeech is returned when the audio was transcribed but contained no
// recognisable words.
var ErrNoSpeech = errors.New("no speech detected")

type TranscriptionOptions struct {
	Language string
	Model    string
	BaseURL  string
}

type TranscriptionOption func(*TranscriptionOptions)

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithModel(model string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

// WithBaseURL points the client at another endpoint, mostly for tests.
func WithBaseURL(baseURL string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if baseURL != "" {
			o.BaseURL = baseURL
		}
	}
}
