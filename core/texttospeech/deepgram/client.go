package deepgram

import (
	"fmt"
	"slices"

	"github.com/koscakluka/ema-chat/core/texttospeech"
)

const (
	DefaultBaseURL    = "wss://api.deepgram.com/v1/speak"
	DefaultSampleRate = 24000
)

// TextToSpeechClient synthesizes whole answers over the Deepgram speak
// websocket.
type TextToSpeechClient struct {
	apiKey  string
	voice   deepgramVoice
	options texttospeech.TextToSpeechOptions
}

func NewTextToSpeechClient(apiKey string, opts ...texttospeech.TextToSpeechOption) (*TextToSpeechClient, error) {
	options := texttospeech.TextToSpeechOptions{
		Voice:      string(defaultVoice),
		SampleRate: DefaultSampleRate,
		BaseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(&options)
	}

	voice := deepgramVoice(options.Voice)
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", options.Voice)
	}

	return &TextToSpeechClient{apiKey: apiKey, voice: voice, options: options}, nil
}
