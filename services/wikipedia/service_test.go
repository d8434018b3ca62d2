package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeWikipedia serves the two action API calls PageSummaries makes.
func fakeWikipedia(t *testing.T, titles []string, extracts map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("list") == "search":
			entries := ""
			for i, title := range titles {
				if i > 0 {
					entries += ","
				}
				entries += fmt.Sprintf(`{"title":%q}`, title)
			}
			fmt.Fprintf(w, `{"query":{"search":[%s]}}`, entries)
		case query.Get("prop") == "extracts":
			title := query.Get("titles")
			extract, ok := extracts[title]
			if !ok {
				fmt.Fprint(w, `{"query":{"pages":{"-1":{"missing":""}}}}`)
				return
			}
			fmt.Fprintf(w, `{"query":{"pages":{"42":{"title":%q,"extract":%q}}}}`, title, extract)
		default:
			t.Errorf("unexpected wikipedia request: %s", r.URL.RawQuery)
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	}))
}

func TestPageSummariesTopTwo(t *testing.T) {
	server := fakeWikipedia(t,
		[]string{"Paris", "Paris Commune", "Paris (mythology)"},
		map[string]string{
			"Paris":              "Capital of France.",
			"Paris Commune":      "Revolutionary government of 1871.",
			"Paris (mythology)":  "Trojan prince.",
		})
	defer server.Close()

	service := NewService()
	service.baseURL = server.URL

	got, err := service.PageSummaries(context.Background(), "paris")
	if err != nil {
		t.Fatalf("PageSummaries returned error: %v", err)
	}

	want := "Page: Paris\nSummary: Capital of France.\n\nPage: Paris Commune\nSummary: Revolutionary government of 1871."
	if got != want {
		t.Errorf("PageSummaries = %q, want %q", got, want)
	}
}

func TestPageSummariesSkipsMissingPages(t *testing.T) {
	server := fakeWikipedia(t,
		[]string{"Ghost Page", "Paris"},
		map[string]string{"Paris": "Capital of France."})
	defer server.Close()

	service := NewService()
	service.baseURL = server.URL

	got, err := service.PageSummaries(context.Background(), "paris")
	if err != nil {
		t.Fatalf("PageSummaries returned error: %v", err)
	}

	want := "Page: Paris\nSummary: Capital of France."
	if got != want {
		t.Errorf("PageSummaries = %q, want %q", got, want)
	}
}

func TestPageSummariesFallback(t *testing.T) {
	server := fakeWikipedia(t, []string{"Ghost Page"}, map[string]string{})
	defer server.Close()

	service := NewService()
	service.baseURL = server.URL

	got, err := service.PageSummaries(context.Background(), "nothing here")
	if err != nil {
		t.Fatalf("PageSummaries returned error: %v", err)
	}
	if got != NoResultFallback {
		t.Errorf("PageSummaries = %q, want fallback %q", got, NoResultFallback)
	}
}

func TestPageSummariesSearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewService()
	service.baseURL = server.URL

	if _, err := service.PageSummaries(context.Background(), "paris"); err == nil {
		t.Fatal("expected an error when the search request fails")
	}
}
