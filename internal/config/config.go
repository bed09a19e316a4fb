// Package config loads the settings of the ema-chat binary. An optional YAML
// file is read first, then .env files, then the process environment. Later
// sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AudioBackendMiniaudio = "miniaudio"
	AudioBackendPortaudio = "portaudio"
	AudioBackendNone      = "none"
)

const (
	envGroqAPIKey     = "GROQ_API_KEY"
	envDeepgramAPIKey = "DEEPGRAM_API_KEY"
	envModel          = "EMA_CHAT_MODEL"
	envVoice          = "EMA_CHAT_VOICE"
	envStoreDir       = "EMA_CHAT_STORE_DIR"
	envStoreQuota     = "EMA_CHAT_STORE_QUOTA"
	envAudioBackend   = "EMA_CHAT_AUDIO_BACKEND"
	envLanguage       = "EMA_CHAT_LANGUAGE"

	envSystemPrompt      = "EMA_CHAT_SYSTEM_PROMPT"
	envCaptureSampleRate = "EMA_CHAT_CAPTURE_SAMPLE_RATE"
	envVoiceSampleRate   = "EMA_CHAT_VOICE_SAMPLE_RATE"
)

var (
	ErrMissingGroqAPIKey   = errors.New("missing groq api key")
	ErrInvalidAudioBackend = errors.New("invalid audio backend")
	ErrInvalidStoreQuota   = errors.New("invalid store quota")
	ErrInvalidSampleRate   = errors.New("invalid sample rate")
)

type Config struct {
	GroqAPIKey     string `yaml:"groq_api_key"`
	DeepgramAPIKey string `yaml:"deepgram_api_key"`

	// Model and Voice fall back to the client defaults when empty.
	Model    string `yaml:"model"`
	Voice    string `yaml:"voice"`
	Language string `yaml:"language"`

	// SystemPrompt replaces the built-in labour-law instructions.
	SystemPrompt string `yaml:"system_prompt"`

	StoreDir   string `yaml:"store_dir"`
	StoreQuota int64  `yaml:"store_quota"`

	AudioBackend string `yaml:"audio_backend"`

	// CaptureSampleRate and VoiceSampleRate are in Hz, zero keeps the
	// device and voice defaults.
	CaptureSampleRate int `yaml:"capture_sample_rate"`
	VoiceSampleRate   int `yaml:"voice_sample_rate"`
}

// SpeechEnabled reports whether transcription and synthesis can be wired.
func (c Config) SpeechEnabled() bool {
	return c.DeepgramAPIKey != ""
}

func (c Config) Validate() error {
	var errs []error
	if c.GroqAPIKey == "" {
		errs = append(errs, ErrMissingGroqAPIKey)
	}
	switch c.AudioBackend {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidAudioBackend, c.AudioBackend))
	}
	if c.StoreQuota < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidStoreQuota, c.StoreQuota))
	}
	for name, rate := range map[string]int{"capture": c.CaptureSampleRate, "voice": c.VoiceSampleRate} {
		if rate < 0 {
			errs = append(errs, fmt.Errorf("%w: %s %d", ErrInvalidSampleRate, name, rate))
		}
	}
	return errors.Join(errs...)
}

type loadOptions struct {
	envFiles  []string
	yamlFile  string
	lookupEnv func(string) (string, bool)
}

type LoadOption func(*loadOptions)

// WithEnvFiles sets the .env files to read. Missing files are skipped.
func WithEnvFiles(paths ...string) LoadOption {
	return func(o *loadOptions) { o.envFiles = paths }
}

// WithFile reads settings from a YAML file. A missing file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.yamlFile = path }
}

func WithLookupEnv(lookup func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) { o.lookupEnv = lookup }
}

func Default() Config {
	return Config{
		Language:     "fr",
		StoreDir:     defaultStoreDir(),
		AudioBackend: AudioBackendMiniaudio,
	}
}

func defaultStoreDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ema-chat"
	}
	return filepath.Join(dir, "ema-chat")
}

// Load builds the configuration and validates it.
func Load(opts ...LoadOption) (Config, error) {
	options := loadOptions{
		envFiles:  []string{".env"},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()

	env := map[string]string{}
	for _, path := range options.envFiles {
		values, err := godotenv.Read(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return Config{}, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		for key, value := range values {
			if _, ok := env[key]; !ok {
				env[key] = value
			}
		}
	}

	if options.yamlFile != "" {
		data, err := os.ReadFile(options.yamlFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", options.yamlFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.lookupEnv(key); ok {
			return value, true
		}
		value, ok := env[key]
		return value, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	cfg.AudioBackend = strings.ToLower(strings.TrimSpace(cfg.AudioBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		envGroqAPIKey:     &cfg.GroqAPIKey,
		envDeepgramAPIKey: &cfg.DeepgramAPIKey,
		envModel:          &cfg.Model,
		envVoice:          &cfg.Voice,
		envStoreDir:       &cfg.StoreDir,
		envAudioBackend:   &cfg.AudioBackend,
		envLanguage:       &cfg.Language,
		envSystemPrompt:   &cfg.SystemPrompt,
	}
	for key, field := range strs {
		if value, ok := lookup(key); ok && value != "" {
			*field = value
		}
	}

	if value, ok := lookup(envStoreQuota); ok && value != "" {
		quota, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidStoreQuota, envStoreQuota, value)
		}
		cfg.StoreQuota = quota
	}

	ints := map[string]*int{
		envCaptureSampleRate: &cfg.CaptureSampleRate,
		envVoiceSampleRate:   &cfg.VoiceSampleRate,
	}
	for key, field := range ints {
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSampleRate, key, value)
		}
		*field = rate
	}
	return nil
}
