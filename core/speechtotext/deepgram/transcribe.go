package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	typeMetadataResponse api.TypeResponse = "Metadata"
	typeErrorResponse    api.TypeResponse = "Error"
)

// TranscribeAudio transcribes a WAV data URI. It streams the samples, closes
// the stream and collects every final result until Deepgram hangs up.
func (s *TranscriptionClient) TranscribeAudio(ctx context.Context, audioURI string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe audio")
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	_, data, err := datauri.Decode(audioURI)
	if err != nil {
		return fail(fmt.Errorf("failed to decode audio: %w", err))
	}
	info, pcm, err := audio.DecodeWAV(data)
	if err != nil {
		return fail(fmt.Errorf("failed to read recorded audio: %w", err))
	}
	encoding, err := convertEncoding(info)
	if err != nil {
		return fail(fmt.Errorf("invalid encoding: %w", err))
	}
	span.SetAttributes(
		attribute.Int("audio.sample_rate", encoding.SampleRate),
		attribute.Int("audio.bytes", len(pcm)),
		attribute.String("transcription.language", s.options.Language),
	)

	conn, err := s.connectWebsocket(ctx, *encoding)
	if err != nil {
		return fail(fmt.Errorf("failed to open websocket: %w", err))
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	writeErr := make(chan error, 1)
	go func() { writeErr <- sendAudio(conn, pcm) }()

	transcript, readErr := readTranscript(conn)
	if readErr != nil {
		// unblocks a writer stuck on a peer that stopped reading
		conn.Close()
	}
	if err := <-writeErr; err != nil && readErr == nil {
		readErr = err
	}
	if ctx.Err() != nil {
		return fail(ctx.Err())
	}
	if readErr != nil {
		return fail(readErr)
	}
	if transcript == "" {
		return fail(speechtotext.ErrNoSpeech)
	}

	logger.DebugContext(ctx, "transcribed audio", "length", len(transcript))
	return transcript, nil
}

func (s *TranscriptionClient) connectWebsocket(ctx context.Context, encoding encodingInfo) (*websocket.Conn, error) {
	listenURL, err := url.Parse(s.options.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", strconv.Itoa(encoding.Channels))
	queryParams.Set("model", s.options.Model)
	queryParams.Set("language", s.options.Language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("punctuate", "true")
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

func sendAudio(conn *websocket.Conn, pcm []byte) error {
	for start := 0; start < len(pcm); start += chunkSize {
		end := min(start+chunkSize, len(pcm))
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[start:end]); err != nil {
			return fmt.Errorf("failed to write audio to deepgram: %w", err)
		}
	}

	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return nil
}

func readTranscript(conn *websocket.Conn) (string, error) {
	segments := []string{}
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return strings.Join(segments, " "), nil
			}
			return "", fmt.Errorf("failed to read deepgram message: %w", err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		segment, done, err := processMessage(msg)
		if err != nil && done {
			return "", err
		} else if err != nil {
			logger.Warn("failed to process deepgram message", "error", err)
			continue
		}
		if segment != "" {
			segments = append(segments, segment)
		}
		if done {
			return strings.Join(segments, " "), nil
		}
	}
}

// processMessage returns the final transcript segment carried by msg, if any,
// and whether the stream is over.
func processMessage(msg []byte) (string, bool, error) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal deepgram message: %w", err)
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			return "", false, fmt.Errorf("failed to unmarshal deepgram results: %w", err)
		}
		if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
			return "", false, nil
		}
		return strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript), false, nil

	case typeMetadataResponse:
		// metadata is the last message before deepgram closes the stream
		return "", true, nil

	case typeErrorResponse:
		var errResp struct {
			Description string `json:"description"`
			Message     string `json:"message"`
		}
		_ = json.Unmarshal(msg, &errResp)
		return "", true, errors.New("deepgram error: " + errResp.Description + " " + errResp.Message)
	}

	return "", false, nil
}
