package elaboration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/platform/obs"
	"delivery-delay-service/internal/platform/resilience"
	"delivery-delay-service/internal/ports"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	remoteName = "remote"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	systemPrompt = "You are a logistics operations assistant. Rewrite the corrective action " +
		"as two or three concrete sentences for a dispatcher. Do not invent numbers."
)

// RemoteElaborator phrases actions through an OpenAI-compatible chat
// completions endpoint.
//
// Each call goes through:
//   - the optional persistent text cache
//   - a circuit breaker shared by all calls
//   - bounded retry with exponential backoff
//
// It is safe for concurrent use.
type RemoteElaborator struct {
	session     HTTPClient
	apiKey      string
	baseURL     string
	model       string
	maxAttempts int
	backoff     time.Duration
	breaker     *resilience.Breaker
	cache       ports.ElaborationCache
	metrics     *metrics.Metrics
}

// RemoteConfig configures a RemoteElaborator. Zero values take defaults.
type RemoteConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout is the http.Client timeout; ignored when Client is set.
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	Client      HTTPClient
	Cache       ports.ElaborationCache
	Breaker     resilience.BreakerConfig
	Metrics     *metrics.Metrics
}

func NewRemoteElaborator(cfg RemoteConfig) (*RemoteElaborator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("remote elaborator: api key is empty")
	}

	r := &RemoteElaborator{
		session:     cfg.Client,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
	}
	if r.session == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 8 * time.Second
		}
		r.session = &http.Client{Timeout: timeout}
	}
	if r.baseURL == "" {
		r.baseURL = DefaultBaseURL
	}
	if r.model == "" {
		r.model = DefaultModel
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = 3
	}
	if r.backoff <= 0 {
		r.backoff = 200 * time.Millisecond
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg = resilience.DefaultBreakerConfig("elaboration")
	}
	r.breaker = resilience.NewBreaker(breakerCfg, cfg.Metrics.SetBreakerState)

	return r, nil
}

func (r *RemoteElaborator) Name() string { return remoteName }

// Elaborate returns the model's phrasing of the action. Every failure wraps
// domain.ErrElaborationUnavailable.
func (r *RemoteElaborator) Elaborate(ctx context.Context, req ports.ElaborationRequest) (_ string, err error) {
	defer obs.Time(ctx, "elaboration.remote.Elaborate")(&err)

	prompt := userPrompt(req)
	key := cacheKey(r.model, prompt)

	if r.cache != nil {
		text, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Printf("req_id=%s elaboration cache get failed: %v", obs.RequestID(ctx), err)
		}
		r.metrics.ObserveCacheLookup(ok)
		if ok {
			return text, nil
		}
	}

	res, err := r.breaker.Execute(func() (any, error) {
		return r.complete(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("elaborate %s: %w: %w", req.Action.ID, domain.ErrElaborationUnavailable, err)
	}
	text := res.(string)

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, text); err != nil {
			log.Printf("req_id=%s elaboration cache put failed: %v", obs.RequestID(ctx), err)
		}
	}
	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *RemoteElaborator) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	url := r.baseURL + "/chat/completions"
	resp, err := r.doWithRetry(ctx, func() (*http.Request, error) {
		return r.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	var raw chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	text := strings.TrimSpace(raw.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat response is empty")
	}
	return text, nil
}

func userPrompt(req ports.ElaborationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s\n", req.Action.Title)
	fmt.Fprintf(&b, "Guidance: %s\n", req.Action.Template)
	fmt.Fprintf(&b, "Route: %s\nCarrier: %s\n", req.Route, req.Carrier)
	fmt.Fprintf(&b, "Predicted delay: %.1f minutes\n", req.PredictedDelayMin)
	fmt.Fprintf(&b, "Estimated reduction: %.1f minutes\n", req.EstimatedReductionMin)
	return b.String()
}

// cacheKey hashes the model and prompt so identical requests share text.
func cacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + systemPrompt + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
