// Package geolocation implements the ip-api.com lookup client, layered
// memory cache -> persistence actor -> HTTP API like pkg/reputation.
//
// Unlike the Rust source this was distilled from, the persistence tier
// here goes through the same actor as every other write, rather than
// holding a direct database handle (see DESIGN.md OQ-2).
package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/store"
	"github.com/marmos91/glasshouse/pkg/store/models"
)

// ip-api.com's free tier has never supported HTTPS; this is a known,
// accepted limitation rather than an oversight.
const apiURLFormat = "http://ip-api.com/json/%s"

// Result is a geolocation record for an IP, whichever tier answered it.
type Result struct {
	IP           string
	Country      string
	Region       string
	RegionName   string
	City         string
	Zip          string
	Latitude     float64
	Longitude    float64
	Timezone     string
	ISP          string
	Organization string
	AS           string
	FetchedAt    time.Time
}

// RateLimitError is returned when ip-api.com responds 429.
type RateLimitError struct{}

func (RateLimitError) Error() string { return "ip-api: rate limit exceeded" }

type cachedResult struct {
	result   Result
	cachedAt time.Time
}

// Client looks up IP geolocation, caching results in memory first, then
// the shared persistence actor's database, only reaching the network on
// a cold miss.
type Client struct {
	http      *http.Client
	actor     *store.Actor
	maxAge    time.Duration
	disabled  bool
	metrics   metrics.EnrichmentMetrics
	urlFormat string

	mu    sync.RWMutex
	cache map[string]cachedResult
}

// NewClient builds a geolocation client. disabled mirrors the
// disable-ipapi configuration flag: when true, Lookup always returns a
// zero-value result without performing any lookup.
func NewClient(actor *store.Actor, maxAge time.Duration, disabled bool, m metrics.EnrichmentMetrics) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		actor:     actor,
		maxAge:    maxAge,
		disabled:  disabled,
		metrics:   m,
		urlFormat: apiURLFormat,
		cache:     make(map[string]cachedResult),
	}
}

// Lookup returns the geolocation for ip, consulting memory cache, then
// the persistence actor, then the ip-api.com API on a cold miss.
func (c *Client) Lookup(ctx context.Context, ip string) (Result, error) {
	if c.disabled {
		return Result{IP: ip}, nil
	}

	start := time.Now()

	if res, ok := c.memoryLookup(ip); ok {
		metrics.RecordLookup(c.metrics, "ip-api", "memory", time.Since(start), nil)
		return res, nil
	}

	if res, ok := c.actorLookup(ip); ok {
		c.storeMemory(ip, res)
		metrics.RecordLookup(c.metrics, "ip-api", "store", time.Since(start), nil)
		return res, nil
	}

	res, err := c.fetch(ctx, ip)
	metrics.RecordLookup(c.metrics, "ip-api", "api", time.Since(start), err)
	if err != nil {
		if _, ok := err.(RateLimitError); ok {
			metrics.RecordRateLimited(c.metrics, "ip-api", 0)
		}
		return Result{}, err
	}

	c.storeMemory(ip, res)
	c.storeActor(res)
	return res, nil
}

func (c *Client) memoryLookup(ip string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.cache[ip]
	if !ok || time.Since(cached.cachedAt) >= c.maxAge {
		return Result{}, false
	}
	logger.Debug("ip-api memory cache hit", logger.IP(ip))
	return cached.result, true
}

func (c *Client) actorLookup(ip string) (Result, bool) {
	if c.actor == nil {
		return Result{}, false
	}

	replyCh := make(chan store.CacheLookupResult, 1)
	c.actor.Send(store.GetIPAPICheck{IP: ip, MaxAge: c.maxAge, ReplyCh: replyCh})
	reply := <-replyCh
	if !reply.Found {
		return Result{}, false
	}

	row, ok := reply.Entry.(models.GeolocationCacheEntry)
	if !ok {
		return Result{}, false
	}
	logger.Debug("ip-api store cache hit", logger.IP(ip))
	return Result{
		IP:           row.IP,
		Country:      row.Country,
		Region:       row.Region,
		RegionName:   row.RegionName,
		City:         row.City,
		Zip:          row.Zip,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		Timezone:     row.Timezone,
		ISP:          row.ISP,
		Organization: row.Organization,
		AS:           row.AS,
		FetchedAt:    row.FetchedAt,
	}, true
}

func (c *Client) storeMemory(ip string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[ip] = cachedResult{result: res, cachedAt: time.Now()}
}

func (c *Client) storeActor(res Result) {
	if c.actor == nil {
		return
	}
	blob, _ := json.Marshal(res)
	c.actor.Send(store.RecordIPAPICheck{
		IP:           res.IP,
		FetchedAt:    res.FetchedAt,
		Country:      res.Country,
		Region:       res.Region,
		RegionName:   res.RegionName,
		City:         res.City,
		Zip:          res.Zip,
		Latitude:     res.Latitude,
		Longitude:    res.Longitude,
		Timezone:     res.Timezone,
		ISP:          res.ISP,
		Organization: res.Organization,
		AS:           res.AS,
		ResponseBlob: string(blob),
	})
}

type apiResponse struct {
	Status     string  `json:"status"`
	Country    string  `json:"country"`
	RegionCode string  `json:"region"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	AS         string  `json:"as"`
}

func (c *Client) fetch(ctx context.Context, ip string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.urlFormat, ip), nil)
	if err != nil {
		return Result{}, fmt.Errorf("ip-api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ip-api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, RateLimitError{}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("ip-api: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("ip-api: decode response: %w", err)
	}
	if body.Status != "success" {
		return Result{}, fmt.Errorf("ip-api: lookup failed for %s", ip)
	}

	return Result{
		IP:           ip,
		Country:      body.Country,
		Region:       body.RegionCode,
		RegionName:   body.RegionName,
		City:         body.City,
		Zip:          body.Zip,
		Latitude:     body.Lat,
		Longitude:    body.Lon,
		Timezone:     body.Timezone,
		ISP:          body.ISP,
		Organization: body.Org,
		AS:           body.AS,
		FetchedAt:    time.Now(),
	}, nil
}
