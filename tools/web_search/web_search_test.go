package web_search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

func TestNewWebSearcherFallsBackToMockWithoutKey(t *testing.T) {
	for _, p := range []web_search.Provider{web_search.TavilyProvider, web_search.BraveProvider, web_search.SerperProvider} {
		s, err := web_search.NewWebSearcher(p, "", web_search.Options{})
		gt.NoError(t, err)
		gt.True(t, web_search.IsMock(s))

		res, err := s.Discover(context.Background(), "IT sector India outlook", 5)
		gt.NoError(t, err)
		gt.Equal(t, res, []models.Result{
			{Title: "(mock) Industry brief", URL: "https://example.com/brief"},
			{Title: "(mock) Company earnings", URL: "https://example.com/earnings"},
		})
	}
}

func TestNewWebSearcherUnsupported(t *testing.T) {
	_, err := web_search.NewWebSearcher("bing", "key", web_search.Options{})
	gt.Error(t, err)
	gt.True(t, err == web_search.ErrUnsupportedProvider)
}

func TestTavilySearch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"IT outlook","url":"https://a.example/1","content":"x"},{"title":"","url":"https://a.example/2"}]}`))
	}))
	defer srv.Close()

	s, err := web_search.NewWebSearcher(web_search.TavilyProvider, "secret", web_search.Options{Endpoint: srv.URL})
	gt.NoError(t, err)
	gt.False(t, web_search.IsMock(s))

	res, err := s.Discover(context.Background(), "IT sector", 5)
	gt.NoError(t, err)
	gt.A(t, res).Length(2)
	gt.Equal(t, res[0].Title, "IT outlook")
	gt.Equal(t, res[1].Title, "result")
	gt.Equal(t, res[1].URL, "https://a.example/2")

	gt.Equal(t, got["api_key"], any("secret"))
	gt.Equal(t, got["query"], any("IT sector"))
	gt.Equal(t, got["max_results"], any(float64(5)))
}

func TestTavilySearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, err := web_search.NewWebSearcher(web_search.TavilyProvider, "secret", web_search.Options{Endpoint: srv.URL})
	gt.NoError(t, err)
	_, err = s.Discover(context.Background(), "IT sector", 5)
	gt.Error(t, err)
}

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "k" {
			t.Fatalf("missing subscription token")
		}
		if r.URL.Query().Get("q") != "pharma sector" {
			t.Fatalf("unexpected query %q", r.URL.Query().Get("q"))
		}
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Pharma","url":"https://b.example","description":"d"}]}}`))
	}))
	defer srv.Close()

	s, err := web_search.NewWebSearcher(web_search.BraveProvider, "k", web_search.Options{Endpoint: srv.URL})
	gt.NoError(t, err)
	res, err := s.Discover(context.Background(), "pharma sector", 3)
	gt.NoError(t, err)
	gt.Equal(t, res, []models.Result{{Title: "Pharma", URL: "https://b.example", Snippet: "d"}})
}

func TestSerperSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "k" {
			t.Fatalf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"organic":[{"title":"A","link":"https://a"},{"title":"B","link":"https://b"},{"title":"C","link":"https://c"}]}`))
	}))
	defer srv.Close()

	s, err := web_search.NewWebSearcher(web_search.SerperProvider, "k", web_search.Options{Endpoint: srv.URL})
	gt.NoError(t, err)
	res, err := s.Discover(context.Background(), "q", 2)
	gt.NoError(t, err)
	gt.A(t, res).Length(2)
	gt.Equal(t, res[1].URL, "https://b")
}
