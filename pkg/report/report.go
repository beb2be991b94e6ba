// Package report renders forensic summaries of recorded honeypot activity,
// grouped by attacking IP address or by a specific password attackers tried,
// in text, Markdown, or HTML form.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/marmos91/glasshouse/pkg/store"
	"github.com/marmos91/glasshouse/pkg/store/models"
)

// Format selects the report's rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("invalid report format: %q (valid: text, markdown, html)", s)
	}
}

// Generator renders reports from the persistence store's recorded rows.
type Generator struct {
	store *store.Store
}

// NewGenerator returns a Generator backed by store.
func NewGenerator(s *store.Store) *Generator {
	return &Generator{store: s}
}

// GenerateIPReport renders every authentication attempt recorded against
// ip, enriched with its cached reputation and geolocation data.
func (g *Generator) GenerateIPReport(ctx context.Context, ip string, format Format) (string, error) {
	rows, err := g.enrichedRows(ctx, "auth_attempts.remote_address = ?", ip)
	if err != nil {
		return "", fmt.Errorf("query auth data for ip %s: %w", ip, err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No data found for IP address: %s\n", ip), nil
	}
	return render(subjectIP, ip, rows, format)
}

// GeneratePasswordReport renders every authentication attempt recorded
// offering password, across every attacking IP.
func (g *Generator) GeneratePasswordReport(ctx context.Context, password string, format Format) (string, error) {
	rows, err := g.enrichedRows(ctx, "auth_attempts.password = ?", password)
	if err != nil {
		return "", fmt.Errorf("query auth data for password: %w", err)
	}
	if len(rows) == 0 {
		return "No data found for that password\n", nil
	}
	return render(subjectPassword, password, rows, format)
}

func (g *Generator) enrichedRows(ctx context.Context, where string, arg any) ([]models.EnrichedAuthRow, error) {
	var rows []models.EnrichedAuthRow
	err := g.store.DB().WithContext(ctx).
		Table("auth_attempts").
		Select(`auth_attempts.*,
			reputation_cache.abuse_score AS reputation_abuse_score,
			reputation_cache.country_code AS reputation_country_code,
			geolocation_cache.country AS geo_country,
			geolocation_cache.city AS geo_city,
			geolocation_cache.isp AS geo_isp`).
		Joins("LEFT JOIN reputation_cache ON reputation_cache.ip = auth_attempts.remote_address").
		Joins("LEFT JOIN geolocation_cache ON geolocation_cache.ip = auth_attempts.remote_address").
		Where(where, arg).
		Order("auth_attempts.timestamp DESC").
		Scan(&rows).Error
	return rows, err
}

type subject int

const (
	subjectIP subject = iota
	subjectPassword
)

func render(subj subject, key string, rows []models.EnrichedAuthRow, format Format) (string, error) {
	switch format {
	case FormatText:
		return renderText(subj, key, rows), nil
	case FormatMarkdown:
		return renderMarkdown(subj, key, rows)
	case FormatHTML:
		return renderHTML(subj, key, rows)
	default:
		return "", fmt.Errorf("unsupported report format: %s", format)
	}
}
