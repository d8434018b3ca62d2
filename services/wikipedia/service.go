package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://en.wikipedia.org/w/api.php"

// NoResultFallback is returned when no searched page yields a usable summary.
const NoResultFallback = "No good Wikipedia Search Result was found"

const summaryPageLimit = 2

// Service is a thin client for the MediaWiki action API.
type Service struct {
	httpClient *http.Client
	baseURL    string
}

func NewService() *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Search returns page titles ranked by relevance for the query.
func (s *Service) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "5")
	params.Set("format", "json")

	var result searchResponse
	if err := s.get(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}

	titles := make([]string, 0, len(result.Query.Search))
	for _, entry := range result.Query.Search {
		titles = append(titles, entry.Title)
	}
	return titles, nil
}

// Summary returns the introductory extract of a page. Missing or empty pages
// are errors so callers can skip them.
func (s *Service) Summary(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("format", "json")

	var result extractResponse
	if err := s.get(ctx, params, &result); err != nil {
		return "", fmt.Errorf("wikipedia summary failed: %w", err)
	}

	for _, page := range result.Query.Pages {
		if page.Missing != nil {
			return "", fmt.Errorf("wikipedia page %q does not exist", title)
		}
		if strings.TrimSpace(page.Extract) == "" {
			return "", fmt.Errorf("wikipedia page %q has no extract", title)
		}
		return page.Extract, nil
	}

	return "", fmt.Errorf("wikipedia returned no page for %q", title)
}

// PageSummaries searches for the query and concatenates the summaries of the
// top pages, skipping any page that cannot be fetched. When nothing usable
// comes back it returns NoResultFallback rather than an error, so the
// assistant still gets a readable answer.
func (s *Service) PageSummaries(ctx context.Context, query string) (string, error) {
	titles, err := s.Search(ctx, query)
	if err != nil {
		return "", err
	}

	if len(titles) > summaryPageLimit {
		titles = titles[:summaryPageLimit]
	}

	var summaries []string
	for _, title := range titles {
		summary, err := s.Summary(ctx, title)
		if err != nil {
			log.Printf("[INFO] Skipping wikipedia page %q: %v", title, err)
			continue
		}
		summaries = append(summaries, fmt.Sprintf("Page: %s\nSummary: %s", title, summary))
	}

	if len(summaries) == 0 {
		return NoResultFallback, nil
	}
	return strings.Join(summaries, "\n\n"), nil
}

func (s *Service) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status code %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
