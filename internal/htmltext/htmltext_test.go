package htmltext

import (
	"strings"
	"testing"
)

func TestIsHTML(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"<!DOCTYPE html><html><body>x</body></html>", true},
		{"<div class=\"page\">content</div>", true},
		{"# Heading\n\nPlain markdown text.", false},
		{"price < 100 and value > 5", false},
	}
	for _, c := range cases {
		if got := IsHTML(c.in); got != c.want {
			t.Errorf("IsHTML(%.30q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSalvagePrefersMain(t *testing.T) {
	in := `<html><body><nav>Menu Menu</nav><main><h1>Report</h1><p>First paragraph.</p></main><footer>legal</footer></body></html>`
	got := Salvage(in)
	if !strings.Contains(got, "Report") || !strings.Contains(got, "First paragraph.") {
		t.Fatalf("content missing: %q", got)
	}
	if strings.Contains(got, "Menu") || strings.Contains(got, "legal") {
		t.Errorf("boilerplate leaked: %q", got)
	}
}

func TestSalvageDropsScripts(t *testing.T) {
	in := `<body><p>visible</p><script>alert("hidden")</script></body>`
	got := Salvage(in)
	if strings.Contains(got, "alert") {
		t.Errorf("script content leaked: %q", got)
	}
}

func TestSalvageKeepsListLines(t *testing.T) {
	in := `<body><ul><li>one</li><li>two</li></ul></body>`
	got := Salvage(in)
	if !strings.Contains(got, "one\ntwo") {
		t.Errorf("list items not on separate lines: %q", got)
	}
}

func TestSalvagePlainTextPassesThrough(t *testing.T) {
	got := Salvage("just words, no markup")
	if got != "just words, no markup" {
		t.Errorf("got %q", got)
	}
}
