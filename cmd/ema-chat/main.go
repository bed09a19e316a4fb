package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/audio/miniaudio"
	"github.com/koscakluka/ema-chat/core/audio/portaudio"
	"github.com/koscakluka/ema-chat/core/llms/groq"
	"github.com/koscakluka/ema-chat/core/speechtotext"
	dgstt "github.com/koscakluka/ema-chat/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-chat/core/store"
	"github.com/koscakluka/ema-chat/core/texttospeech"
	dgtts "github.com/koscakluka/ema-chat/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-chat/internal/config"
	"github.com/koscakluka/ema-chat/internal/tui"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const shutdownTimeout = 5 * time.Second

var logger = otelslog.NewLogger("github.com/koscakluka/ema-chat/cmd/ema-chat")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ema-chat:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	var loadOpts []config.LoadOption
	if *configPath != "" {
		loadOpts = append(loadOpts, config.WithFile(*configPath))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := tui.NewRelay()
	sessionOpts := []orchestration.SessionOption{
		orchestration.WithEventHandler(relay.Handle),
		orchestration.WithTranscriptStore(store.NewFileStore(cfg.StoreDir, store.WithQuota(cfg.StoreQuota))),
		orchestration.WithAnswerGenerator(newAnswerGenerator(cfg)),
	}

	if cfg.SpeechEnabled() {
		sttOpts := []speechtotext.TranscriptionOption{speechtotext.WithLanguage(cfg.Language)}
		sessionOpts = append(sessionOpts, orchestration.WithTranscriber(dgstt.NewTranscriptionClient(cfg.DeepgramAPIKey, sttOpts...)))

		var ttsOpts []texttospeech.TextToSpeechOption
		if cfg.Voice != "" {
			ttsOpts = append(ttsOpts, texttospeech.WithVoice(cfg.Voice))
		}
		if cfg.VoiceSampleRate > 0 {
			ttsOpts = append(ttsOpts, texttospeech.WithSampleRate(cfg.VoiceSampleRate))
		}
		synthesizer, err := dgtts.NewTextToSpeechClient(cfg.DeepgramAPIKey, ttsOpts...)
		if err != nil {
			return fmt.Errorf("failed to create speech synthesizer: %w", err)
		}
		sessionOpts = append(sessionOpts, orchestration.WithSpeechSynthesizer(synthesizer))
	} else {
		logger.Info("no deepgram key configured, dictation and spoken answers are disabled")
	}

	microphone, speaker, err := newAudioDevices(cfg)
	if err != nil {
		logger.Warn("audio devices unavailable, continuing without them", "backend", cfg.AudioBackend, "error", err)
	}
	if microphone != nil {
		sessionOpts = append(sessionOpts, orchestration.WithMicrophone(microphone))
	}

	session := orchestration.NewSession(sessionOpts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			logger.Warn("failed to close session cleanly", "error", err)
		}
	}()

	var tuiOpts []tui.Option
	if speaker != nil {
		tuiOpts = append(tuiOpts, tui.WithSpeaker(speaker))
	}
	program := tea.NewProgram(tui.New(ctx, session, tuiOpts...), tea.WithAltScreen(), tea.WithContext(ctx))
	relay.Attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui failed: %w", err)
	}
	return nil
}

func newAnswerGenerator(cfg config.Config) *groq.Client {
	var opts []groq.ClientOption
	if cfg.Model != "" {
		opts = append(opts, groq.WithModel(cfg.Model))
	}
	if cfg.SystemPrompt != "" {
		opts = append(opts, groq.WithSystemPrompt(cfg.SystemPrompt))
	}
	return groq.NewClient(cfg.GroqAPIKey, opts...)
}

// newAudioDevices returns a nil speaker for backends that only capture.
func newAudioDevices(cfg config.Config) (orchestration.Microphone, audio.Speaker, error) {
	switch cfg.AudioBackend {
	case config.AudioBackendMiniaudio:
		client, err := miniaudio.NewClient(miniaudio.WithCaptureSampleRate(cfg.CaptureSampleRate))
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case config.AudioBackendPortaudio:
		return portaudio.NewClient(1024), nil, nil
	default:
		return nil, nil, nil
	}
}
