package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/marmos91/glasshouse/pkg/store/models"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SSH Honeypot Report{{if .IsIP}} for {{.Key}}{{end}}</title>
<style>
body { font-family: monospace; background: #1e1e1e; color: #ddd; margin: 2em; }
h1 { color: #e06c75; }
h2 { color: #61afef; border-bottom: 1px solid #444; padding-bottom: 0.2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
td, th { padding: 0.3em 1em; text-align: left; border-bottom: 1px solid #333; }
.empty { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>SSH Honeypot Report{{if .IsIP}} for {{.Key}}{{end}}</h1>

{{if .IsIP}}
<h2>Geolocation</h2>
{{if .HasGeo}}<table><tr><th>Country</th><td>{{.GeoCountry}}</td></tr><tr><th>City</th><td>{{.GeoCity}}</td></tr></table>
{{else}}<p class="empty">No geolocation data cached.</p>{{end}}

<h2>Network</h2>
{{if .HasNet}}<table><tr><th>ISP</th><td>{{.GeoISP}}</td></tr></table>
{{else}}<p class="empty">No network data cached.</p>{{end}}

<h2>Threat Intelligence</h2>
{{if .HasRep}}<table><tr><th>Abuse Confidence Score</th><td>{{.AbuseScore}}%</td></tr><tr><th>Country Code</th><td>{{.RepCountryCode}}</td></tr></table>
{{else}}<p class="empty">No reputation data cached.</p>{{end}}
{{end}}

<h2>Attack Statistics</h2>
<table>
<tr><th>Total Authentication Attempts</th><td>{{.Total}}</td></tr>
<tr><th>Unique Usernames Tried</th><td>{{.UniqueUsernames}}</td></tr>
<tr><th>Unique Passwords Tried</th><td>{{.UniquePasswords}}</td></tr>
<tr><th>First Seen</th><td>{{.FirstSeen}}</td></tr>
<tr><th>Last Seen</th><td>{{.LastSeen}}</td></tr>
</table>

<h2>Top Usernames Attempted</h2>
<table>{{range .TopUsernames}}<tr><td>{{.Value}}</td><td>{{.Count}}x</td></tr>{{end}}</table>

<h2>Top Passwords Attempted</h2>
<table>{{range .TopPasswords}}<tr><td>{{.Value}}</td><td>{{.Count}}x</td></tr>{{end}}</table>

<h2>Recent Authentication Attempts</h2>
<table>
<tr><th>Timestamp</th><th>Username</th><th>Password</th></tr>
{{range .Recent}}<tr><td>{{.Timestamp}}</td><td>{{.Username}}</td><td>{{.Password}}</td></tr>
{{end}}
</table>

</body>
</html>
`

func renderHTML(subj subject, key string, rows []models.EnrichedAuthRow) (string, error) {
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

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parse html template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}
