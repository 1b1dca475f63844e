package publishers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRegistryBuildsKnownTypes(t *testing.T) {
	reg := DefaultRegistry()

	pub, err := reg.PublisherFor(context.Background(), twitterConfig("https://api.example.com"), nil)
	if err != nil {
		t.Fatalf("PublisherFor(twitter): %v", err)
	}
	if pub.Type() != TypeTwitter || pub.ID() != "main" {
		t.Errorf("unexpected publisher: %s/%s", pub.Type(), pub.ID())
	}

	httpCfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "mirror",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: "https://hooks.example.com"},
	})
	pub, err = reg.PublisherFor(context.Background(), httpCfg, nil)
	if err != nil {
		t.Fatalf("PublisherFor(http): %v", err)
	}
	if pub.Primary() {
		t.Error("http mirror should not be primary")
	}
}

func TestRegistryUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "x", Type: "smoke-signal"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestBuildAll(t *testing.T) {
	reg := DefaultRegistry()
	cfgs := []PublisherConfig{
		twitterConfig("https://api.example.com"),
		sanitizePublisherConfig(PublisherConfig{
			ID:   "mirror",
			Type: TypeHTTP,
			HTTP: &HTTPPublisherConfig{URL: "https://hooks.example.com"},
		}),
	}

	pubs, err := BuildAll(context.Background(), reg, cfgs, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("built %d publishers, want 2", len(pubs))
	}
}

func TestHTTPPublisherDeliversEvent(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("custom header missing")
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "mirror",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:     srv.URL,
			Headers: map[string]string{"X-Token": "secret"},
		},
	})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	evt := Event{ProviderID: "headlines", ArticleURL: "https://example.com/a", Text: "t", PostedAt: time.Now()}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if received.ArticleURL != evt.ArticleURL {
		t.Errorf("delivered event = %+v", received)
	}
}

func TestHTTPPublisherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "mirror",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL},
	})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := pub.Publish(context.Background(), Event{Text: "t"}); err == nil {
		t.Error("expected error for 500 response")
	}
}
