package report

import (
	"strings"
	"testing"
)

func TestRenderMarkdownIPReport(t *testing.T) {
	out, err := renderMarkdown(subjectIP, "203.0.113.9", sampleRows())
	if err != nil {
		t.Fatalf("renderMarkdown: %v", err)
	}
	for _, want := range []string{
		"# SSH Honeypot Report for 203.0.113.9",
		"## Geolocation",
		"Romania",
		"## Attack Statistics",
		"root (2x)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderMarkdown output missing %q\n---\n%s", want, out)
		}
	}
}

func TestRenderMarkdownPasswordReportOmitsGeo(t *testing.T) {
	out, err := renderMarkdown(subjectPassword, "admin123", sampleRows())
	if err != nil {
		t.Fatalf("renderMarkdown: %v", err)
	}
	if strings.Contains(out, "## Geolocation") {
		t.Errorf("password report should omit geolocation section:\n%s", out)
	}
}

func TestRenderHTMLIPReport(t *testing.T) {
	out, err := renderHTML(subjectIP, "203.0.113.9", sampleRows())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	for _, want := range []string{"<html", "203.0.113.9", "Romania", "root"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderHTML output missing %q", want)
		}
	}
}
