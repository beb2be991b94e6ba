// Package reputation implements the AbuseIPDB abuse-score lookup client,
// layered memory cache -> persistence actor -> HTTPS API, each tier
// consulted only after the previous one misses or goes stale.
package reputation

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/store"
	"github.com/marmos91/glasshouse/pkg/store/models"
)

const (
	checkURL        = "https://api.abuseipdb.com/api/v2/check"
	maxAgeInDaysAPI = "90"
)

// CheckResult is the abuse-score record returned for an IP, whichever
// tier answered it.
type CheckResult struct {
	IP                string
	AbuseConfidence   int
	CountryCode       string
	IsTor             bool
	IsWhitelisted     bool
	TotalReports      int
	FetchedAt         time.Time
}

// RateLimitError is returned when AbuseIPDB responds 429. The memory and
// persistence caches are left untouched when this error is returned.
type RateLimitError struct {
	Limit           *int
	Remaining       *int
	ResetTimestamp  *int64
	RetryAfterSecs  *int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfterSecs != nil {
		return fmt.Sprintf("abuseipdb: daily rate limit exceeded, retry after %ds", *e.RetryAfterSecs)
	}
	if e.ResetTimestamp != nil {
		wait := *e.ResetTimestamp - time.Now().Unix()
		if wait < 0 {
			wait = 0
		}
		return fmt.Sprintf("abuseipdb: daily rate limit exceeded, resets in %ds", wait)
	}
	return "abuseipdb: daily rate limit exceeded"
}

type cachedResult struct {
	result   CheckResult
	cachedAt time.Time
}

// Client checks IP reputation against AbuseIPDB, caching results in
// memory first, then the shared persistence actor's database, only
// reaching the network on a cold miss.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	actor   *store.Actor
	maxAge  time.Duration
	metrics metrics.EnrichmentMetrics

	mu    sync.RWMutex
	cache map[string]cachedResult
}

// NewClient builds a reputation client. actor may be nil in tests that
// only exercise the memory tier and the HTTP call.
func NewClient(apiKey string, actor *store.Actor, maxAge time.Duration, m metrics.EnrichmentMetrics) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		apiKey:  apiKey,
		baseURL: checkURL,
		actor:   actor,
		maxAge:  maxAge,
		metrics: m,
		cache:   make(map[string]cachedResult),
	}
}

// Check returns the abuse reputation for ip, consulting memory cache,
// then the persistence actor, then the AbuseIPDB API on a cold miss. An
// empty API key short-circuits to a zero-value result with no lookups.
func (c *Client) Check(ctx context.Context, ip string) (CheckResult, error) {
	if c.apiKey == "" {
		return CheckResult{IP: ip}, nil
	}

	start := time.Now()

	if res, ok := c.memoryLookup(ip); ok {
		metrics.RecordLookup(c.metrics, "abuseipdb", "memory", time.Since(start), nil)
		return res, nil
	}

	if res, ok := c.actorLookup(ip); ok {
		c.storeMemory(ip, res)
		metrics.RecordLookup(c.metrics, "abuseipdb", "store", time.Since(start), nil)
		return res, nil
	}

	res, err := c.fetch(ctx, ip)
	metrics.RecordLookup(c.metrics, "abuseipdb", "api", time.Since(start), err)
	if err != nil {
		if rl, ok := err.(*RateLimitError); ok {
			retryAfter := time.Duration(0)
			if rl.RetryAfterSecs != nil {
				retryAfter = time.Duration(*rl.RetryAfterSecs) * time.Second
			}
			metrics.RecordRateLimited(c.metrics, "abuseipdb", retryAfter)
		}
		return CheckResult{}, err
	}

	c.storeMemory(ip, res)
	c.storeActor(res)
	return res, nil
}

func (c *Client) memoryLookup(ip string) (CheckResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.cache[ip]
	if !ok || time.Since(cached.cachedAt) >= c.maxAge {
		return CheckResult{}, false
	}
	logger.Debug("abuseipdb memory cache hit", logger.IP(ip))
	return cached.result, true
}

func (c *Client) actorLookup(ip string) (CheckResult, bool) {
	if c.actor == nil {
		return CheckResult{}, false
	}

	replyCh := make(chan store.CacheLookupResult, 1)
	c.actor.Send(store.GetAbuseIPCheck{IP: ip, MaxAge: c.maxAge, ReplyCh: replyCh})
	reply := <-replyCh
	if !reply.Found {
		return CheckResult{}, false
	}

	row, ok := reply.Entry.(models.ReputationCacheEntry)
	if !ok {
		return CheckResult{}, false
	}
	logger.Debug("abuseipdb store cache hit", logger.IP(ip))
	return CheckResult{
		IP:              row.IP,
		AbuseConfidence: row.AbuseScore,
		CountryCode:     row.CountryCode,
		IsTor:           row.IsTor,
		IsWhitelisted:   row.IsWhitelisted,
		TotalReports:    row.TotalReports,
		FetchedAt:       row.FetchedAt,
	}, true
}

func (c *Client) storeMemory(ip string, res CheckResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[ip] = cachedResult{result: res, cachedAt: time.Now()}
}

func (c *Client) storeActor(res CheckResult) {
	if c.actor == nil {
		return
	}
	blob, _ := json.Marshal(res)
	c.actor.Send(store.RecordAbuseIPCheck{
		IP:            res.IP,
		FetchedAt:     res.FetchedAt,
		AbuseScore:    res.AbuseConfidence,
		CountryCode:   res.CountryCode,
		IsTor:         res.IsTor,
		IsWhitelisted: res.IsWhitelisted,
		TotalReports:  res.TotalReports,
		ResponseBlob:  string(blob),
	})
}

type checkResponseEnvelope struct {
	Data checkResponseData `json:"data"`
}

type checkResponseData struct {
	AbuseConfidenceScore *int    `json:"abuseConfidenceScore"`
	CountryCode          *string `json:"countryCode"`
	IPAddress            string  `json:"ipAddress"`
	IsTor                bool    `json:"isTor"`
	IsWhitelisted        *bool   `json:"isWhitelisted"`
	TotalReports         int     `json:"totalReports"`
}

func (c *Client) fetch(ctx context.Context, ip string) (CheckResult, error) {
	q := url.Values{}
	q.Set("ipAddress", ip)
	q.Set("maxAgeInDays", maxAgeInDaysAPI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return CheckResult{}, fmt.Errorf("abuseipdb: build request: %w", err)
	}
	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return CheckResult{}, fmt.Errorf("abuseipdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return CheckResult{}, parseRateLimit(resp.Header)
	}
	if resp.StatusCode != http.StatusOK {
		return CheckResult{}, fmt.Errorf("abuseipdb: unexpected status %d", resp.StatusCode)
	}

	var envelope checkResponseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return CheckResult{}, fmt.Errorf("abuseipdb: decode response: %w", err)
	}

	result := CheckResult{
		IP:           ip,
		IsTor:        envelope.Data.IsTor,
		TotalReports: envelope.Data.TotalReports,
		FetchedAt:    time.Now(),
	}
	if envelope.Data.AbuseConfidenceScore != nil {
		result.AbuseConfidence = *envelope.Data.AbuseConfidenceScore
	}
	if envelope.Data.CountryCode != nil {
		result.CountryCode = *envelope.Data.CountryCode
	}
	if envelope.Data.IsWhitelisted != nil {
		result.IsWhitelisted = *envelope.Data.IsWhitelisted
	}
	return result, nil
}

func parseRateLimit(h http.Header) *RateLimitError {
	return &RateLimitError{
		Limit:          parseIntHeader(h, "X-RateLimit-Limit"),
		Remaining:      parseIntHeader(h, "X-RateLimit-Remaining"),
		ResetTimestamp: parseInt64Header(h, "X-RateLimit-Reset"),
		RetryAfterSecs: parseIntHeader(h, "Retry-After"),
	}
}

func parseIntHeader(h http.Header, key string) *int {
	v := h.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func parseInt64Header(h http.Header, key string) *int64 {
	v := h.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
