package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if got := r.URL.Query().Get("path"); got != "charts/rev.png" {
			t.Errorf("expected path query param, got %q", got)
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, "test-token")
	art, err := f.FetchArtifact(context.Background(), "sess-1", "nbk-1", "charts/rev.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art == nil {
		t.Fatal("expected an artifact")
	}
	if art.Name != "rev.png" {
		t.Errorf("expected name rev.png, got %q", art.Name)
	}
	if art.ContentType != "image/png" {
		t.Errorf("expected image/png, got %q", art.ContentType)
	}
	if string(art.Data) != "png-bytes" {
		t.Errorf("unexpected data: %q", art.Data)
	}
}

func TestHTTPFetcher_NotFoundIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, "")
	art, err := f.FetchArtifact(context.Background(), "sess-1", "nbk-1", "missing.png")
	if err != nil {
		t.Fatalf("expected no error for 404, got %v", err)
	}
	if art != nil {
		t.Errorf("expected nil artifact, got %+v", art)
	}
}

func TestHTTPFetcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, "")
	_, err := f.FetchArtifact(context.Background(), "sess-1", "nbk-1", "a.png")
	if err == nil {
		t.Fatal("expected an error for 500")
	}
}

func TestHTTPFetcher_EmptyBodyIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, "")
	art, err := f.FetchArtifact(context.Background(), "sess-1", "nbk-1", "a.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art != nil {
		t.Errorf("expected nil artifact for empty body, got %+v", art)
	}
}
