package secretai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"secretai/pkg/llm"
	llmopenai "secretai/pkg/llm/openai"

	openai "github.com/sashabaranov/go-openai"
)

const headerAuthorization = "Authorization"

// ClientOptions configures an authenticated inference client.
type ClientOptions struct {
	// Host is the inference endpoint, usually one of the URLs returned by
	// Secret.ListURLs. Defaults to DefaultHost.
	Host string

	// APIKey is the bearer token. When empty, SECRET_AI_API_KEY is used.
	APIKey string

	Model       string
	Temperature float32

	// Headers are sent with every request alongside the Authorization
	// header. An Authorization entry here takes precedence.
	Headers http.Header

	// HTTPClient is wrapped, not replaced; its transport still does the
	// actual round trip.
	HTTPClient *http.Client
}

// Client is a chat client for a Secret AI confidential LLM endpoint. It
// owns a base chat client and injects the credentials into every request.
type Client struct {
	host        string
	temperature float32
	headers     http.Header
	httpClient  *http.Client
	base        llm.Client
}

var _ llm.Client = (*Client)(nil)

// NewClient resolves the API key and builds the client. It fails with
// ErrMissingCredential when no key is available and with ErrInvalidInput
// when Host is not an http(s) URL; no request is made.
func NewClient(opts ClientOptions) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	host := strings.TrimRight(strings.TrimSpace(opts.Host), "/")
	if host == "" {
		host = DefaultHost
	}
	if err := validateHost(host); err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set(headerAuthorization, "Bearer "+apiKey)
	for key, values := range opts.Headers {
		headers.Del(key)
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	httpClient.Transport = &headerTransport{headers: headers, next: httpClient.Transport}

	// The bearer token travels through headerTransport; go-openai must not
	// set its own.
	config := openai.DefaultConfig("")
	config.BaseURL = host + "/v1"
	config.HTTPClient = httpClient

	return &Client{
		host:        host,
		temperature: opts.Temperature,
		headers:     headers,
		httpClient:  httpClient,
		base:        llmopenai.NewClient(opts.Model, config),
	}, nil
}

func validateHost(host string) error {
	u, err := url.Parse(host)
	if err != nil {
		return fmt.Errorf("%w: host %q: %v", ErrInvalidInput, host, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: host %q must be an http or https URL", ErrInvalidInput, host)
	}
	return nil
}

// Host returns the inference endpoint.
func (c *Client) Host() string {
	return c.host
}

// Headers returns a copy of the headers added to every request.
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

// HTTPClient returns the authenticated HTTP client, usable with any other
// library that talks to the same endpoint.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return c.base.Chat(ctx, c.withDefaults(req))
}

func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.StreamReader, error) {
	return c.base.ChatStream(ctx, c.withDefaults(req))
}

func (c *Client) Provider() string {
	return "secretai"
}

func (c *Client) Model() string {
	return c.base.Model()
}

// Attestation returns the endpoint's attestation report.
func (c *Client) Attestation(ctx context.Context) (map[string]any, error) {
	return nil, ErrNotImplemented
}

func (c *Client) withDefaults(req *llm.ChatRequest) *llm.ChatRequest {
	if req.Temperature != 0 || c.temperature == 0 {
		return req
	}
	r := *req
	r.Temperature = c.temperature
	return &r
}

// headerTransport sets a fixed header set on every outgoing request.
type headerTransport struct {
	headers http.Header
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	for key, values := range t.headers {
		r.Header.Del(key)
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}
	return next.RoundTrip(r)
}
