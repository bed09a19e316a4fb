package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)

func sendTextMsg(text string) websocketMessage {
	return websocketMessage{Type: "Speak", Text: text}
}

// SynthesizeSpeech renders text and returns it as a WAV data URI.
func (c *TextToSpeechClient) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("speech.voice", string(c.voice)),
		attribute.Int("speech.text_length", len(text)),
	)

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	conn, err := c.connectWebsocket(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to open websocket: %w", err))
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for _, msg := range []websocketMessage{sendTextMsg(text), flushMsg} {
		if err := conn.WriteJSON(msg); err != nil {
			return fail(fmt.Errorf("failed to send %s message: %w", msg.Type, err))
		}
	}

	pcm, err := readUntilFlushed(conn)
	if ctx.Err() != nil {
		return fail(ctx.Err())
	}
	if err != nil {
		return fail(err)
	}
	if err := conn.WriteJSON(closeMsg); err != nil {
		logger.DebugContext(ctx, "failed to close speak stream", "error", err)
	}
	if len(pcm) == 0 {
		return fail(texttospeech.ErrNoAudio)
	}

	wavData, err := audio.EncodeWAV(audio.EncodingInfo{
		SampleRate: c.options.SampleRate,
		Format:     audio.EncodingLinear16,
		Channels:   1,
	}, pcm)
	if err != nil {
		return fail(fmt.Errorf("failed to package synthesized audio: %w", err))
	}

	span.SetAttributes(attribute.Int("speech.audio_bytes", len(pcm)))
	return datauri.EncodeWithType("audio/wav", wavData), nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context) (*websocket.Conn, error) {
	speakURL, err := url.Parse(c.options.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid speak url: %w", err)
	}

	urlValues := speakURL.Query()
	urlValues.Set("encoding", string(audio.EncodingLinear16))
	urlValues.Set("sample_rate", strconv.Itoa(c.options.SampleRate))
	urlValues.Set("model", string(c.voice))
	urlValues.Set("container", "none")
	speakURL.RawQuery = urlValues.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, speakURL.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

func readUntilFlushed(conn *websocket.Conn) ([]byte, error) {
	var pcm bytes.Buffer
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return pcm.Bytes(), nil
			}
			return nil, fmt.Errorf("failed to read speak stream: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			pcm.Write(msg)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				return pcm.Bytes(), nil
			case "Error":
				return nil, fmt.Errorf("deepgram speak error: %s", parsedMsg.Description)
			}
		}
	}
}
