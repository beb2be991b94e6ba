package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/marmos91/glasshouse/internal/cli/output"
	"github.com/marmos91/glasshouse/internal/cli/timeutil"
	"github.com/marmos91/glasshouse/pkg/store/models"
)

const sectionRule = "=========================================="

// renderText mirrors the original honeypot's plaintext report layout:
// geolocation, network, threat intelligence, attack statistics, then the
// top usernames/passwords/recent-attempts tables.
func renderText(subj subject, key string, rows []models.EnrichedAuthRow) string {
	var buf bytes.Buffer

	title := "SSH HONEYPOT REPORT FOR IP: " + key
	if subj == subjectPassword {
		title = "SSH HONEYPOT REPORT FOR PASSWORD"
	}
	fmt.Fprintln(&buf, sectionRule)
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, sectionRule)
	fmt.Fprintln(&buf)

	if subj == subjectIP {
		writeGeolocation(&buf, rows[0])
		writeNetwork(&buf, rows[0])
		writeThreatIntel(&buf, rows[0])
	}

	stats := computeStats(rows)
	writeAttackStatistics(&buf, stats)

	fmt.Fprintln(&buf, "TOP USERNAMES ATTEMPTED")
	fmt.Fprintln(&buf, "-----------------------")
	for _, tc := range stats.topUsernames {
		fmt.Fprintf(&buf, "  %s (%dx)\n", tc.value, tc.count)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "TOP PASSWORDS ATTEMPTED")
	fmt.Fprintln(&buf, "------------------------")
	for _, tc := range stats.topPasswords {
		fmt.Fprintf(&buf, "  %s (%dx)\n", tc.value, tc.count)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "RECENT AUTHENTICATION ATTEMPTS")
	fmt.Fprintln(&buf, "-------------------------------")
	table := output.NewTableData("Timestamp", "Username", "Password")
	for _, r := range recentN(rows, 20) {
		pw := "<no password>"
		if r.Password != nil {
			pw = *r.Password
		}
		table.AddRow(r.Timestamp.UTC().Format("2006-01-02 15:04:05"), r.Username, pw)
	}
	_ = output.PrintTable(&buf, table)
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, sectionRule)

	return buf.String()
}

func writeGeolocation(buf *bytes.Buffer, r models.EnrichedAuthRow) {
	fmt.Fprintln(buf, "GEOLOCATION INFORMATION")
	fmt.Fprintln(buf, "------------------------")
	if r.GeoCountry == nil {
		fmt.Fprintln(buf, "  No geolocation data cached")
		fmt.Fprintln(buf)
		return
	}
	_ = output.SimpleTable(buf, [][2]string{
		{"Country", deref(r.GeoCountry)},
		{"City", deref(r.GeoCity)},
	})
	fmt.Fprintln(buf)
}

func writeNetwork(buf *bytes.Buffer, r models.EnrichedAuthRow) {
	fmt.Fprintln(buf, "NETWORK INFORMATION")
	fmt.Fprintln(buf, "--------------------")
	if r.GeoISP == nil {
		fmt.Fprintln(buf, "  No network data cached")
		fmt.Fprintln(buf)
		return
	}
	_ = output.SimpleTable(buf, [][2]string{
		{"ISP", deref(r.GeoISP)},
	})
	fmt.Fprintln(buf)
}

func writeThreatIntel(buf *bytes.Buffer, r models.EnrichedAuthRow) {
	fmt.Fprintln(buf, "THREAT INTELLIGENCE")
	fmt.Fprintln(buf, "--------------------")
	if r.ReputationAbuseScore == nil {
		fmt.Fprintln(buf, "  No reputation data cached")
		fmt.Fprintln(buf)
		return
	}
	_ = output.SimpleTable(buf, [][2]string{
		{"Abuse Confidence Score", fmt.Sprintf("%d%%", *r.ReputationAbuseScore)},
		{"Country Code", deref(r.ReputationCountryCode)},
	})
	fmt.Fprintln(buf)
}

func writeAttackStatistics(buf *bytes.Buffer, s stats) {
	fmt.Fprintln(buf, "ATTACK STATISTICS")
	fmt.Fprintln(buf, "-----------------")
	_ = output.SimpleTable(buf, [][2]string{
		{"Total Authentication Attempts", fmt.Sprintf("%d", s.total)},
		{"Unique Usernames Tried", fmt.Sprintf("%d", s.uniqueUsernames)},
		{"Unique Passwords Tried", fmt.Sprintf("%d", s.uniquePasswords)},
		{"First Seen", s.firstSeen.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Last Seen", s.lastSeen.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Attack Duration", timeutil.FormatUptime(s.lastSeen.Sub(s.firstSeen).String())},
	})
	fmt.Fprintln(buf)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type tally struct {
	value string
	count int
}

type stats struct {
	total            int
	uniqueUsernames  int
	uniquePasswords  int
	firstSeen        time.Time
	lastSeen         time.Time
	topUsernames     []tally
	topPasswords     []tally
}

// computeStats assumes rows are ordered most-recent-first, matching the
// query's ORDER BY timestamp DESC.
func computeStats(rows []models.EnrichedAuthRow) stats {
	usernameCounts := map[string]int{}
	passwordCounts := map[string]int{}

	s := stats{total: len(rows), lastSeen: rows[0].Timestamp, firstSeen: rows[len(rows)-1].Timestamp}

	for _, r := range rows {
		usernameCounts[r.Username]++
		if r.Password != nil && *r.Password != "" {
			passwordCounts[*r.Password]++
		}
	}

	s.uniqueUsernames = len(usernameCounts)
	s.uniquePasswords = len(passwordCounts)
	s.topUsernames = topN(usernameCounts, 10)
	s.topPasswords = topN(passwordCounts, 10)
	return s
}

func topN(counts map[string]int, n int) []tally {
	tallies := make([]tally, 0, len(counts))
	for v, c := range counts {
		tallies = append(tallies, tally{value: v, count: c})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].count != tallies[j].count {
			return tallies[i].count > tallies[j].count
		}
		return tallies[i].value < tallies[j].value
	})
	if len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}

func recentN(rows []models.EnrichedAuthRow, n int) []models.EnrichedAuthRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
