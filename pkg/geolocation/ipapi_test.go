package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup_DisabledShortCircuits(t *testing.T) {
	c := NewClient(nil, time.Hour, true, nil)
	res, err := c.Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IP != "1.2.3.4" || res.Country != "" {
		t.Errorf("expected zero-value result, got %+v", res)
	}
}

func TestLookup_MemoryCacheHit(t *testing.T) {
	c := NewClient(nil, time.Hour, false, nil)
	want := Result{IP: "5.6.7.8", Country: "Italy", FetchedAt: time.Now()}
	c.storeMemory("5.6.7.8", want)

	got, err := c.Lookup(context.Background(), "5.6.7.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Country != want.Country {
		t.Errorf("expected cached result, got %+v", got)
	}
}

func TestLookup_MemoryCacheExpired(t *testing.T) {
	c := NewClient(nil, time.Millisecond, false, nil)
	c.storeMemory("5.6.7.8", Result{IP: "5.6.7.8", Country: "Italy"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.memoryLookup("5.6.7.8"); ok {
		t.Error("expected stale memory entry to miss")
	}
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"Italy","countryCode":"IT","region":"25","regionName":"Lombardy","city":"Milan","zip":"20100","lat":45.4642,"lon":9.19,"timezone":"Europe/Rome","isp":"Test ISP","org":"Test Org","as":"AS1234 Test","query":"9.9.9.9"}`))
	}))
	defer srv.Close()

	c := NewClient(nil, time.Hour, false, nil)
	c.urlFormat = srv.URL + "/%s"

	res, err := c.fetch(context.Background(), "9.9.9.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Country != "Italy" || res.City != "Milan" || res.ISP != "Test ISP" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestFetch_RateLimitDoesNotUpdateCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(nil, time.Hour, false, nil)
	c.urlFormat = srv.URL + "/%s"

	_, err := c.Lookup(context.Background(), "7.7.7.7")
	if _, ok := err.(RateLimitError); !ok {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if _, ok := c.memoryLookup("7.7.7.7"); ok {
		t.Error("expected memory cache to remain unmodified on rate limit")
	}
}

func TestFetch_FailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"fail","message":"invalid query"}`))
	}))
	defer srv.Close()

	c := NewClient(nil, time.Hour, false, nil)
	c.urlFormat = srv.URL + "/%s"

	if _, err := c.fetch(context.Background(), "not-an-ip"); err == nil {
		t.Fatal("expected error for failed lookup status")
	}
}
