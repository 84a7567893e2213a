package fetch

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	doc := `<html><head>
		<title>Retrieval Basics</title>
		<style>body { color: red; }</style>
		<script>console.log("ignored");</script>
	</head><body>
		<h1>Inverted Indexes</h1>
		<p>Every term maps to a <a href="/postings">posting list</a>.</p>
		<p>See also <a href="https://example.test/ranking">ranking</a> and
		<a href="">nothing</a>.</p>
	</body></html>`

	text, hrefs, err := ExtractText(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	for _, want := range []string{"Retrieval Basics", "Inverted Indexes", "posting list"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q: %q", want, text)
		}
	}
	for _, banned := range []string{"color: red", "console.log"} {
		if strings.Contains(text, banned) {
			t.Errorf("text contains skipped content %q: %q", banned, text)
		}
	}

	wantHrefs := []string{"/postings", "https://example.test/ranking"}
	if !reflect.DeepEqual(hrefs, wantHrefs) {
		t.Errorf("hrefs = %v, want %v", hrefs, wantHrefs)
	}
}

func TestExtractTextMalformedHTML(t *testing.T) {
	// html.Parse repairs rather than rejects malformed markup.
	text, _, err := ExtractText(strings.NewReader("<p>unclosed <b>bold"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if !strings.Contains(text, "unclosed") || !strings.Contains(text, "bold") {
		t.Errorf("text = %q, want both fragments", text)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	text, hrefs, err := ExtractText(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
	if len(hrefs) != 0 {
		t.Errorf("hrefs = %v, want none", hrefs)
	}
}

func TestResolveHref(t *testing.T) {
	base := "https://example.test/docs/index.html"

	tests := []struct {
		href string
		want string
	}{
		{"/about", "https://example.test/about"},
		{"page2.html", "https://example.test/docs/page2.html"},
		{"https://example.test/other", "https://example.test/other"},
		{"#section", ""},
		{"javascript:void(0)", ""},
		{"mailto:a@example.test", ""},
		{"data:text/plain,hi", ""},
	}
	for _, tt := range tests {
		got := resolveHref(base, tt.href)
		if got != tt.want {
			t.Errorf("resolveHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
