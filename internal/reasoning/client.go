// internal/reasoning/client.go
package reasoning

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"yojana-engine/internal/common/config"
	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/metrics"
)

// Outcome is the collaborator's answer for one narrative rule.
type Outcome string

const (
	OutcomeSupported    Outcome = "supported"
	OutcomeUnsupported  Outcome = "unsupported"
	OutcomeUndetermined Outcome = "undetermined"
)

// Verdict is the structured result of evaluating one narrative rule against
// one profile summary.
type Verdict struct {
	Outcome   Outcome `json:"outcome"`
	Rationale string  `json:"rationale,omitempty"`
}

// Client evaluates a free-text eligibility rule against a profile summary.
// Implementations must be safe for concurrent use.
type Client interface {
	EvaluateNarrativeRule(ctx context.Context, profileSummary, ruleText string) (*Verdict, error)
}

// HTTPClient calls the external reasoning collaborator over HTTP. Calls are
// capped by a semaphore independent of the evaluation worker pool, retried a
// bounded number of times with exponential backoff, and verdicts are cached
// in redis keyed by (profile summary, rule text).
type HTTPClient struct {
	cfg    config.ReasoningConfig
	client *http.Client
	sem    *semaphore.Weighted
	cache  *redis.Client // nil disables caching
	logger logger.Logger
}

func NewHTTPClient(cfg config.ReasoningConfig, cache *redis.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		// No client-level timeout; the per-call context bounds each attempt.
		client: &http.Client{},
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "reasoning-client"}),
	}
}

type evaluateRequest struct {
	ProfileSummary string `json:"profileSummary"`
	RuleText       string `json:"ruleText"`
}

func (c *HTTPClient) EvaluateNarrativeRule(ctx context.Context, profileSummary, ruleText string) (*Verdict, error) {
	cacheKey := verdictCacheKey(profileSummary, ruleText)
	if v := c.cachedVerdict(ctx, cacheKey); v != nil {
		metrics.ReasoningCalls.WithLabelValues("cache_hit").Inc()
		return v, nil
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		metrics.ReasoningCalls.WithLabelValues("error").Inc()
		return nil, stderrors.NewReasoningTimeoutError()
	}
	defer c.sem.Release(1)

	verdict, err := c.call(ctx, profileSummary, ruleText)
	if err != nil {
		metrics.ReasoningCalls.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ReasoningCalls.WithLabelValues(string(verdict.Outcome)).Inc()
	c.storeVerdict(ctx, cacheKey, verdict)
	return verdict, nil
}

func (c *HTTPClient) call(ctx context.Context, profileSummary, ruleText string) (*Verdict, error) {
	body, _ := json.Marshal(evaluateRequest{
		ProfileSummary: profileSummary,
		RuleText:       ruleText,
	})

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, stderrors.NewReasoningTimeoutError()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.TimeoutDuration())
		verdict, err := c.doRequest(attemptCtx, body)
		cancel()
		if err == nil {
			return verdict, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, stderrors.NewReasoningTimeoutError()
		}

		c.logger.Warn("reasoning call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err,
		})
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, stderrors.NewReasoningTimeoutError()
	}
	return nil, stderrors.NewReasoningUnavailableError(lastErr)
}

func (c *HTTPClient) doRequest(ctx context.Context, body []byte) (*Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/ai/evaluate-rule", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, err
	}

	switch verdict.Outcome {
	case OutcomeSupported, OutcomeUnsupported, OutcomeUndetermined:
		return &verdict, nil
	default:
		return nil, fmt.Errorf("unknown outcome %q", verdict.Outcome)
	}
}

func (c *HTTPClient) cachedVerdict(ctx context.Context, key string) *Verdict {
	if c.cache == nil || c.cfg.CacheTTL == 0 {
		return nil
	}
	val, err := c.cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var verdict Verdict
	if err := json.Unmarshal([]byte(val), &verdict); err != nil {
		return nil
	}
	return &verdict
}

func (c *HTTPClient) storeVerdict(ctx context.Context, key string, verdict *Verdict) {
	if c.cache == nil || c.cfg.CacheTTL == 0 {
		return
	}
	data, _ := json.Marshal(verdict)
	c.cache.Set(ctx, key, data, c.cfg.CacheTTLDuration())
}

func verdictCacheKey(profileSummary, ruleText string) string {
	sum := sha256.Sum256([]byte(profileSummary + "\x00" + ruleText))
	return "reasoning:verdict:" + hex.EncodeToString(sum[:16])
}
