package report

import (
	"strings"
	"testing"
	"time"

	"github.com/marmos91/glasshouse/pkg/store/models"
)

func strptr(s string) *string { return &s }

func sampleRows() []models.EnrichedAuthRow {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return []models.EnrichedAuthRow{
		{
			AuthAttempt: models.AuthAttempt{
				Timestamp: base.Add(2 * time.Hour),
				Username:  "root",
				Password:  strptr("admin123"),
			},
			GeoCountry:            strptr("Romania"),
			GeoCity:               strptr("Bucharest"),
			GeoISP:                strptr("Some ISP"),
			ReputationAbuseScore:  intptr(87),
			ReputationCountryCode: strptr("RO"),
		},
		{
			AuthAttempt: models.AuthAttempt{
				Timestamp: base.Add(1 * time.Hour),
				Username:  "admin",
				Password:  strptr("admin123"),
			},
		},
		{
			AuthAttempt: models.AuthAttempt{
				Timestamp: base,
				Username:  "root",
				Password:  strptr("12345"),
			},
		},
	}
}

func intptr(i int) *int { return &i }

func TestComputeStats(t *testing.T) {
	rows := sampleRows()
	s := computeStats(rows)

	if s.total != 3 {
		t.Errorf("total = %d, want 3", s.total)
	}
	if s.uniqueUsernames != 2 {
		t.Errorf("uniqueUsernames = %d, want 2", s.uniqueUsernames)
	}
	if s.uniquePasswords != 2 {
		t.Errorf("uniquePasswords = %d, want 2", s.uniquePasswords)
	}
	if !s.lastSeen.Equal(rows[0].Timestamp) {
		t.Errorf("lastSeen = %v, want %v", s.lastSeen, rows[0].Timestamp)
	}
	if !s.firstSeen.Equal(rows[len(rows)-1].Timestamp) {
		t.Errorf("firstSeen = %v, want %v", s.firstSeen, rows[len(rows)-1].Timestamp)
	}
	if len(s.topUsernames) == 0 || s.topUsernames[0].value != "root" || s.topUsernames[0].count != 2 {
		t.Errorf("topUsernames = %+v, want root first with count 2", s.topUsernames)
	}
	if len(s.topPasswords) == 0 || s.topPasswords[0].value != "admin123" || s.topPasswords[0].count != 2 {
		t.Errorf("topPasswords = %+v, want admin123 first with count 2", s.topPasswords)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int{"a": 5, "b": 5, "c": 1, "d": 3}
	got := topN(counts, 2)
	if len(got) != 2 {
		t.Fatalf("topN len = %d, want 2", len(got))
	}
	// a and b tie at count 5; tie-break is alphabetical.
	if got[0].value != "a" || got[0].count != 5 {
		t.Errorf("got[0] = %+v, want {a 5}", got[0])
	}
	if got[1].value != "b" || got[1].count != 5 {
		t.Errorf("got[1] = %+v, want {b 5}", got[1])
	}
}

func TestTopNFewerThanN(t *testing.T) {
	counts := map[string]int{"x": 1}
	got := topN(counts, 10)
	if len(got) != 1 {
		t.Fatalf("topN len = %d, want 1", len(got))
	}
}

func TestRecentN(t *testing.T) {
	rows := sampleRows()
	if got := recentN(rows, 2); len(got) != 2 {
		t.Errorf("recentN(rows, 2) len = %d, want 2", len(got))
	}
	if got := recentN(rows, 20); len(got) != len(rows) {
		t.Errorf("recentN(rows, 20) len = %d, want %d", len(got), len(rows))
	}
}

func TestDeref(t *testing.T) {
	if got := deref(nil); got != "" {
		t.Errorf("deref(nil) = %q, want empty", got)
	}
	s := "value"
	if got := deref(&s); got != "value" {
		t.Errorf("deref(&s) = %q, want value", got)
	}
}

func TestRenderTextIPReport(t *testing.T) {
	rows := sampleRows()
	out := renderText(subjectIP, "203.0.113.9", rows)

	for _, want := range []string{
		"SSH HONEYPOT REPORT FOR IP: 203.0.113.9",
		"GEOLOCATION INFORMATION",
		"Romania",
		"NETWORK INFORMATION",
		"THREAT INTELLIGENCE",
		"ATTACK STATISTICS",
		"TOP USERNAMES ATTEMPTED",
		"root (2x)",
		"TOP PASSWORDS ATTEMPTED",
		"admin123 (2x)",
		"RECENT AUTHENTICATION ATTEMPTS",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderText output missing %q\n---\n%s", want, out)
		}
	}
}

func TestRenderTextPasswordReportOmitsIPSections(t *testing.T) {
	rows := sampleRows()
	out := renderText(subjectPassword, "admin123", rows)

	if strings.Contains(out, "GEOLOCATION INFORMATION") {
		t.Errorf("password report should omit geolocation section:\n%s", out)
	}
	if !strings.Contains(out, "SSH HONEYPOT REPORT FOR PASSWORD") {
		t.Errorf("password report missing title:\n%s", out)
	}
	if !strings.Contains(out, "ATTACK STATISTICS") {
		t.Errorf("password report missing attack statistics:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"TEXT", FormatText, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{" HTML ", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
