package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"holidayplanner/models"

	"github.com/patrickmn/go-cache"
)

const (
	defaultBaseURL = "https://test.api.amadeus.com"

	tokenCacheKey = "access_token"
	// Tokens are refreshed a minute before Amadeus expires them.
	tokenExpiryMargin = 60 * time.Second
)

// Service is a thin client for the Amadeus self-service reference-data APIs:
// airports by geocode, points of interest by geocode and hotels by city code.
type Service struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	tokens       *cache.Cache
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      defaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       cache.New(cache.NoExpiration, 5*time.Minute),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *Service) accessToken(ctx context.Context) (string, error) {
	if token, found := s.tokens.Get(tokenCacheKey); found {
		return token.(string), nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode amadeus token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("amadeus returned an empty access token")
	}

	ttl := time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin
	if ttl <= 0 {
		ttl = time.Duration(token.ExpiresIn) * time.Second
	}
	s.tokens.Set(tokenCacheKey, token.AccessToken, ttl)

	return token.AccessToken, nil
}

type locationPayload struct {
	Name    string `json:"name"`
	Rating  string `json:"rating,omitempty"`
	HotelID string `json:"hotelId,omitempty"`
	GeoCode struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geoCode"`
	Category string `json:"category,omitempty"`
}

type locationsResponse struct {
	Data []locationPayload `json:"data"`
}

// AirportsNear returns airports ranked by relevance around the coordinates.
func (s *Service) AirportsNear(ctx context.Context, latitude, longitude float64) ([]models.Airport, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", latitude))
	query.Set("longitude", fmt.Sprintf("%f", longitude))

	var result locationsResponse
	if err := s.get(ctx, "/v1/reference-data/locations/airports", query, &result); err != nil {
		return nil, err
	}

	airports := make([]models.Airport, 0, len(result.Data))
	for _, entry := range result.Data {
		airports = append(airports, models.Airport{
			Name:      entry.Name,
			Latitude:  entry.GeoCode.Latitude,
			Longitude: entry.GeoCode.Longitude,
		})
	}
	return airports, nil
}

// PointsOfInterestNear returns points of interest ranked by relevance around
// the coordinates.
func (s *Service) PointsOfInterestNear(ctx context.Context, latitude, longitude float64) ([]models.PointOfInterest, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", latitude))
	query.Set("longitude", fmt.Sprintf("%f", longitude))

	var result locationsResponse
	if err := s.get(ctx, "/v1/reference-data/locations/pois", query, &result); err != nil {
		return nil, err
	}

	pois := make([]models.PointOfInterest, 0, len(result.Data))
	for _, entry := range result.Data {
		pois = append(pois, models.PointOfInterest{
			Name:      entry.Name,
			Latitude:  entry.GeoCode.Latitude,
			Longitude: entry.GeoCode.Longitude,
			Category:  entry.Category,
		})
	}
	return pois, nil
}

// HotelsByCity returns hotel summaries for an IATA city code.
func (s *Service) HotelsByCity(ctx context.Context, cityCode string) ([]models.HotelOffer, error) {
	query := url.Values{}
	query.Set("cityCode", cityCode)

	var result locationsResponse
	if err := s.get(ctx, "/v1/reference-data/locations/hotels/by-city", query, &result); err != nil {
		return nil, err
	}

	hotels := make([]models.HotelOffer, 0, len(result.Data))
	for _, entry := range result.Data {
		hotel := models.HotelOffer{
			HotelID:   entry.HotelID,
			Name:      entry.Name,
			Latitude:  entry.GeoCode.Latitude,
			Longitude: entry.GeoCode.Longitude,
		}
		fmt.Sscanf(entry.Rating, "%d", &hotel.Rating)
		hotels = append(hotels, hotel)
	}
	return hotels, nil
}

func (s *Service) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amadeus request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode amadeus response: %w", err)
	}
	return nil
}

// parseAPIError keeps the upstream error text intact so it can be surfaced to
// the assistant verbatim.
func parseAPIError(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return fmt.Errorf("amadeus api error: %s", resp.Status)
	}

	var payload struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Errors) == 0 {
		return fmt.Errorf("amadeus api error: %s", resp.Status)
	}

	first := payload.Errors[0]
	if first.Detail != "" {
		return fmt.Errorf("amadeus api error: %s", first.Detail)
	}
	return fmt.Errorf("amadeus api error: %s", first.Title)
}
