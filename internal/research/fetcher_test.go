package research_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/internal/research"
)

const page = `<!doctype html><html><head><title>Acme Widgets | About</title>
<meta property="og:site_name" content="Acme"></head><body>
<nav>Home | Products | Contact</nav>
<article><h1>About Acme Widgets</h1>
<p>Acme Widgets has manufactured industrial fasteners in Ohio since 1999 and now ships to forty countries.</p>
<p>The company recently launched a subscription programme for maintenance teams that keeps spare parts stocked on site.</p>
<p>Acme engineers work directly with procurement managers to size inventories, forecast demand across seasons, and cut emergency orders that inflate costs for plant operators.</p>
<p>In its most recent annual report the company cited supply chain visibility and faster quote turnaround as the two priorities its customers raise most often in renewal talks.</p>
<p>Its largest customers are regional utilities and rail operators who value predictable delivery times.</p>
</article></body></html>`

func TestFetch_ExtractsArticle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := research.NewFetcher().Fetch(context.Background(), srv.URL+"/about")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(a.Text, "industrial fasteners") {
		t.Errorf("text = %q, want article body", a.Text)
	}
	if a.URL != srv.URL+"/about" {
		t.Errorf("url = %q", a.URL)
	}
	if a.Title == "" {
		t.Error("expected a title")
	}
}

func TestFetch_Non200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := research.NewFetcher().Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "HTTP 410") {
		t.Fatalf("err = %v, want HTTP 410", err)
	}
}

func TestFetch_EmptyPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	_, err := research.NewFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for empty page")
	}
	if !errors.Is(err, research.ErrNoContent) && !strings.Contains(err.Error(), "extract") {
		t.Errorf("err = %v, want no-content or extract failure", err)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"https://acme.example/about", true},
		{"  http://acme.example  ", true},
		{"acme widgets", false},
		{"ftp://acme.example", false},
		{"https://", false},
	}
	for _, tt := range tests {
		if got := research.IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
