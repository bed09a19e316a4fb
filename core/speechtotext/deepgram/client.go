package deepgram

import (
	"github.com/koscakluka/ema-chat/core/speechtotext"
)

const (
	DefaultBaseURL  = "wss://api.deepgram.com/v1/listen"
	DefaultModel    = "nova-2"
	DefaultLanguage = "fr"

	// chunkSize keeps single websocket frames around a quarter second of
	// 16 kHz linear16 audio.
	chunkSize = 8000
)

// TranscriptionClient turns recorded audio into text using Deepgram live
// transcription.
type TranscriptionClient struct {
	apiKey  string
	options speechtotext.TranscriptionOptions
}

func NewTranscriptionClient(apiKey string, opts ...speechtotext.TranscriptionOption) *TranscriptionClient {
	options := speechtotext.TranscriptionOptions{
		Language: DefaultLanguage,
		Model:    DefaultModel,
		BaseURL:  DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &TranscriptionClient{apiKey: apiKey, options: options}
}
