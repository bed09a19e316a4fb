package groq

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "meta-llama/llama-4-scout-17b-16e-instruct"

	chatCompletionsPath = "/chat/completions"
)

// Client generates assistant answers through the Groq chat completions API.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	systemPrompt string
	httpClient   *http.Client
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithSystemPrompt(systemPrompt string) ClientOption {
	return func(c *Client) { c.systemPrompt = systemPrompt }
}

// WithHTTPClient replaces the default client. The transport is not wrapped
// for tracing.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:       apiKey,
		model:        DefaultModel,
		baseURL:      DefaultBaseURL,
		systemPrompt: DefaultSystemPrompt,
		httpClient:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
