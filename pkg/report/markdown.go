package report

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/marmos91/glasshouse/pkg/store/models"
)

const markdownTemplate = `# SSH Honeypot Report{{if .IsIP}} for {{.Key}}{{end}}

{{if .IsIP}}
## Geolocation

{{if .HasGeo}}| Field | Value |
|---|---|
| Country | {{.GeoCountry}} |
| City | {{.GeoCity}} |
{{else}}_No geolocation data cached._
{{end}}

## Network

{{if .HasNet}}| Field | Value |
|---|---|
| ISP | {{.GeoISP}} |
{{else}}_No network data cached._
{{end}}

## Threat Intelligence

{{if .HasRep}}| Field | Value |
|---|---|
| Abuse Confidence Score | {{.AbuseScore}}% |
| Country Code | {{.RepCountryCode}} |
{{else}}_No reputation data cached._
{{end}}
{{end}}
## Attack Statistics

| Metric | Value |
|---|---|
| Total Authentication Attempts | {{.Total}} |
| Unique Usernames Tried | {{.UniqueUsernames}} |
| Unique Passwords Tried | {{.UniquePasswords}} |
| First Seen | {{.FirstSeen}} |
| Last Seen | {{.LastSeen}} |

## Top Usernames Attempted

{{range .TopUsernames}}- {{.Value}} ({{.Count}}x)
{{end}}

## Top Passwords Attempted

{{range .TopPasswords}}- {{.Value}} ({{.Count}}x)
{{end}}

## Recent Authentication Attempts

| Timestamp | Username | Password |
|---|---|---|
{{range .Recent}}| {{.Timestamp}} | {{.Username}} | {{.Password}} |
{{end}}
`

type mdData struct {
	IsIP bool
	Key  string

	HasGeo, HasNet, HasRep bool
	GeoCountry, GeoCity    string
	GeoISP                 string
	AbuseScore             int
	RepCountryCode         string

	Total, UniqueUsernames, UniquePasswords int
	FirstSeen, LastSeen                     string
	TopUsernames, TopPasswords              []tally

	Recent []mdRow
}

type mdRow struct {
	Timestamp, Username, Password string
}

func renderMarkdown(subj subject, key string, rows []models.EnrichedAuthRow) (string, error) {
	s := computeStats(rows)
	d := mdData{
		IsIP:            subj == subjectIP,
		Key:             key,
		Total:           s.total,
		UniqueUsernames: s.uniqueUsernames,
		UniquePasswords: s.uniquePasswords,
		FirstSeen:       s.firstSeen.UTC().Format("2006-01-02 15:04:05 UTC"),
		LastSeen:        s.lastSeen.UTC().Format("2006-01-02 15:04:05 UTC"),
		TopUsernames:    s.topUsernames,
		TopPasswords:    s.topPasswords,
	}

	if subj == subjectIP {
		first := rows[0]
		if first.GeoCountry != nil {
			d.HasGeo = true
			d.GeoCountry = deref(first.GeoCountry)
			d.GeoCity = deref(first.GeoCity)
		}
		if first.GeoISP != nil {
			d.HasNet = true
			d.GeoISP = deref(first.GeoISP)
		}
		if first.ReputationAbuseScore != nil {
			d.HasRep = true
			d.AbuseScore = *first.ReputationAbuseScore
			d.RepCountryCode = deref(first.ReputationCountryCode)
		}
	}

	for _, r := range recentN(rows, 20) {
		pw := "<no password>"
		if r.Password != nil {
			pw = *r.Password
		}
		d.Recent = append(d.Recent, mdRow{
			Timestamp: r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			Username:  r.Username,
			Password:  pw,
		})
	}

	tmpl, err := template.New("report").Parse(markdownTemplate)
	if err != nil {
		return "", fmt.Errorf("parse markdown template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render markdown report: %w", err)
	}
	return buf.String(), nil
}
