package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://a.co/1", true},
		{"https://example.com", true},
		{"  https://example.com/path?q=1  ", true},
		{"notalink", false},
		{"http://a.co/1 extra", false},
		{"http://a.co/pa th", false},
		{"http://a.co/1\textra", false},
		{"ftp://example.com", false},
		{"http://", false},
		{"", false},
		{"https:///nohost", false},
	}
	for _, tt := range tests {
		if got := ValidURL(tt.in); got != tt.want {
			t.Errorf("ValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://m.facebook.com/story", "https://www.facebook.com/story"},
		{"http://web.facebook.com/x", "https://www.facebook.com/x"},
		{"HTTPS://MOBILE.facebook.com/x", "https://www.facebook.com/x"},
		{"https://www.facebook.com/x", "https://www.facebook.com/x"},
		{"  http://a.co/1  ", "http://a.co/1"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://no.link/ep1", true},
		{"http://example.com/nolink", true},
		{"http://example.com/real", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.in); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProbe_StatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/headblocked":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	p := NewProber(5 * time.Second)
	ctx := context.Background()

	if ok, detail := p.Probe(ctx, srv.URL+"/ok"); !ok || detail != "HTTP 200" {
		t.Errorf("ok probe = %v %q", ok, detail)
	}
	if ok, detail := p.Probe(ctx, srv.URL+"/gone"); ok || detail != "HTTP 404" {
		t.Errorf("gone probe = %v %q", ok, detail)
	}
	// HEAD 405 falls back to GET.
	if ok, _ := p.Probe(ctx, srv.URL+"/headblocked"); !ok {
		t.Error("headblocked probe should succeed via GET fallback")
	}
}

func TestCheckAll_OrderAndPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(5 * time.Second)
	links := []string{srv.URL + "/a", "http://no.link/x", srv.URL + "/b"}
	results := p.CheckAll(context.Background(), links, 2)

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, link := range links {
		if results[i].Link != link {
			t.Errorf("results[%d].Link = %q, want %q", i, results[i].Link, link)
		}
	}
	if results[1].OK || results[1].Detail != "placeholder link" {
		t.Errorf("placeholder result = %+v", results[1])
	}
	if !results[0].OK || !results[2].OK {
		t.Errorf("live links reported dead: %+v", results)
	}
}
