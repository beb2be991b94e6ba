package store

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/glasshouse/pkg/store/models"
)

func TestActorRecordsAuthThenCommandsThenSession(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()
	actor := NewActor(s)

	password := "toor"
	actor.Send(RecordAuth{
		ID:            "auth-1",
		Timestamp:     time.Now(),
		RemoteAddress: "203.0.113.5",
		Username:      "root",
		Method:        "password",
		Password:      &password,
		Accepted:      true,
	})
	actor.Send(RecordCommand{ID: "cmd-1", AuthID: "auth-1", Timestamp: time.Now(), Text: "whoami"})
	actor.Send(RecordCommand{ID: "cmd-2", AuthID: "auth-1", Timestamp: time.Now(), Text: "pwd"})

	start := time.Now()
	end := start.Add(2 * time.Second)
	actor.Send(RecordSession{AuthID: "auth-1", StartedAt: start, EndedAt: end, DurationMs: 2000})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	actor.Shutdown(ctx)

	var auth models.AuthAttempt
	if err := s.DB().First(&auth, "id = ?", "auth-1").Error; err != nil {
		t.Fatalf("expected auth row to exist: %v", err)
	}
	if !auth.Accepted {
		t.Error("expected accepted=true")
	}

	var commands []models.Command
	if err := s.DB().Order("text asc").Find(&commands, "auth_id = ?", "auth-1").Error; err != nil {
		t.Fatalf("query commands: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}

	var session models.Session
	if err := s.DB().First(&session, "auth_id = ?", "auth-1").Error; err != nil {
		t.Fatalf("expected session row: %v", err)
	}
	if session.EndedAt.Before(session.StartedAt) {
		t.Error("expected ended_at >= started_at")
	}
}

func TestActorReputationCacheTTL(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()
	actor := NewActor(s)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		actor.Shutdown(ctx)
	}()

	actor.Send(RecordAbuseIPCheck{
		IP:         "198.51.100.7",
		FetchedAt:  time.Now(),
		AbuseScore: 80,
	})

	reply := make(chan CacheLookupResult, 1)
	actor.Send(GetAbuseIPCheck{IP: "198.51.100.7", MaxAge: 90 * 24 * time.Hour, ReplyCh: reply})
	result := <-reply
	if !result.Found {
		t.Fatal("expected fresh cache hit")
	}

	staleReply := make(chan CacheLookupResult, 1)
	actor.Send(GetAbuseIPCheck{IP: "198.51.100.7", MaxAge: 0, ReplyCh: staleReply})
	staleResult := <-staleReply
	if staleResult.Found {
		t.Fatal("expected stale entry to miss")
	}
}
