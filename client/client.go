// Package client assembles provider-agnostic chat requests and issues them
// against the relay's invoke route, forwarding AWS credentials via headers.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"bedrock-relay/common/helper"
	"bedrock-relay/common/random"
	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

var (
	// ErrMissingCredentials is surfaced before any network call when the
	// mandatory credential triple is incomplete.
	ErrMissingCredentials = errors.New("unauthorized: region, access key id and secret access key are required")

	// ErrMissingInferenceProfile is surfaced before any network call when a
	// Llama model is requested without an inference-profile identifier.
	ErrMissingInferenceProfile = errors.New(
		"llama models require an inference profile: set Credentials.InferenceProfile to the provisioned profile identifier")

	// ErrNotImplemented marks operations this provider does not support.
	ErrNotImplemented = errors.New("not implemented")
)

// Credentials holds the AWS credential material forwarded per request. It is
// kept only in process memory and never persisted by this layer.
type Credentials struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	SessionToken     string
	InferenceProfile string
}

func (c Credentials) complete() bool {
	return c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// ModelConfig carries the tunables merged from global defaults, session
// overrides and the per-call override, later layers winning.
type ModelConfig struct {
	Model       string
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	Stream      *bool
}

// MergeModelConfig layers three configs into one; zero/nil fields defer to
// the earlier layer. The inputs are not mutated.
func MergeModelConfig(defaults, session, call ModelConfig) ModelConfig {
	merged := defaults
	for _, layer := range []ModelConfig{session, call} {
		if layer.Model != "" {
			merged.Model = layer.Model
		}
		if layer.Temperature != nil {
			merged.Temperature = layer.Temperature
		}
		if layer.TopP != nil {
			merged.TopP = layer.TopP
		}
		if layer.MaxTokens != 0 {
			merged.MaxTokens = layer.MaxTokens
		}
		if layer.Stream != nil {
			merged.Stream = layer.Stream
		}
	}
	return merged
}

// Callbacks deliver results to the caller. Every failure path invokes
// OnError; nothing propagates uncaught.
type Callbacks struct {
	// OnChunk receives each streamed fragment verbatim, in arrival order.
	OnChunk func(string)
	// OnComplete receives the full response text of a non-streaming call.
	OnComplete func(string)
	OnError    func(error)
	// OnToolMessage exists for transport symmetry with other providers.
	// Bedrock calls pass through empty tool state, so it is never invoked.
	OnToolMessage func(string)
}

func (cb Callbacks) chunk(text string) {
	if cb.OnChunk != nil {
		cb.OnChunk(text)
	}
}

func (cb Callbacks) complete(text string) {
	if cb.OnComplete != nil {
		cb.OnComplete(text)
	}
}

func (cb Callbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Usage reports token accounting. This provider does not support usage
// accounting, so the zero value is always returned.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	creds      Credentials
	defaults   ModelConfig
	session    ModelConfig
}

// New returns a client targeting the relay at baseURL (without the
// /api/bedrock suffix), authenticating with apiKey.
func New(baseURL, apiKey string, creds Credentials, defaults ModelConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		creds:      creds,
		defaults:   defaults,
	}
}

// SetSessionConfig installs session-level overrides applied to every
// subsequent call, between the defaults and the per-call override.
func (c *Client) SetSessionConfig(cfg ModelConfig) {
	c.session = cfg
}

func isLlamaModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "llama")
}

// Chat issues one chat call. The returned CancelFunc aborts the in-flight
// request; results and failures arrive via the callbacks.
func (c *Client) Chat(ctx context.Context, messages []relaymodel.Message, override ModelConfig, cb Callbacks) (context.CancelFunc, error) {
	cfg := MergeModelConfig(c.defaults, c.session, override)

	if !c.creds.complete() {
		cb.fail(ErrMissingCredentials)
		return nil, ErrMissingCredentials
	}
	if isLlamaModel(cfg.Model) && c.creds.InferenceProfile == "" {
		cb.fail(ErrMissingInferenceProfile)
		return nil, ErrMissingInferenceProfile
	}
	for _, msg := range messages {
		if !msg.IsValidRole() {
			err := errors.Errorf("invalid message role %q", msg.Role)
			cb.fail(err)
			return nil, err
		}
	}

	envelope := relaymodel.GeneralChatRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Stream:      cfg.Stream != nil && *cfg.Stream,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		cb.fail(err)
		return nil, errors.Wrap(err, "marshal envelope")
	}

	callCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		c.baseURL+"/api/bedrock/invoke", bytes.NewReader(body))
	if err != nil {
		cancel()
		cb.fail(err)
		return nil, errors.Wrap(err, "build request")
	}
	c.setHeaders(req)

	go func() {
		defer cancel()
		if envelope.Stream {
			c.doStream(req, cb)
		} else {
			c.doOnce(req, cb)
		}
	}()

	return cancel, nil
}

// setHeaders forwards the credential material; the client never validates it.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(helper.RequestIdKey, random.GetUUID())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set(meta.HeaderRegion, c.creds.Region)
	req.Header.Set(meta.HeaderAccessKey, c.creds.AccessKeyID)
	req.Header.Set(meta.HeaderSecretKey, c.creds.SecretAccessKey)
	if c.creds.SessionToken != "" {
		req.Header.Set(meta.HeaderSessionToken, c.creds.SessionToken)
	}
	if c.creds.InferenceProfile != "" {
		req.Header.Set(meta.HeaderInferenceProfile, c.creds.InferenceProfile)
	}
}

func (c *Client) doOnce(req *http.Request, cb Callbacks) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cb.fail(errors.Wrap(err, "relay request"))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		cb.fail(errors.Wrap(err, "read relay response"))
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cb.fail(errors.Errorf("relay returned status %d: %s", resp.StatusCode, string(body)))
		return
	}
	cb.complete(string(body))
}

func (c *Client) doStream(req *http.Request, cb Callbacks) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cb.fail(errors.Wrap(err, "relay request"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		cb.fail(errors.Errorf("relay returned status %d: %s", resp.StatusCode, string(body)))
		return
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}
		var fragment string
		if err := json.Unmarshal([]byte(payload), &fragment); err != nil {
			// Tolerate unframed payloads from older relay revisions.
			fragment = payload
		}
		full.WriteString(fragment)
		cb.chunk(fragment)
	}
	if err := scanner.Err(); err != nil {
		cb.fail(errors.Wrap(err, "read stream"))
		return
	}
	cb.complete(full.String())
}

// UsageReport always reports zero values: usage accounting is not supported
// by this provider.
func (c *Client) UsageReport(ctx context.Context) (Usage, error) {
	return Usage{}, nil
}

// Models always reports an empty list: model listing is not supported by
// this provider.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Speech is explicitly unsupported by this provider.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	return nil, ErrNotImplemented
}
