package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"holidayplanner/models"

	"github.com/samber/lo"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// hourlyTimeLayout is the zone-less timestamp format Open-Meteo returns for
// hourly series. Values are UTC because requests pin timezone=UTC.
const hourlyTimeLayout = "2006-01-02T15:04"

// Service is a thin client for the Open-Meteo forecast API.
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

type forecastResponse struct {
	Hourly struct {
		Time             []string  `json:"time"`
		Temperature2m    []float64 `json:"temperature_2m"`
		WindSpeed10m     []float64 `json:"wind_speed_10m"`
		RelativeHumidity []float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// HourlyForecast fetches one day of hourly temperature, wind speed and
// humidity samples for the given coordinates.
func (s *Service) HourlyForecast(ctx context.Context, latitude, longitude float64) ([]models.WeatherSample, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", latitude))
	query.Set("longitude", fmt.Sprintf("%f", longitude))
	query.Set("hourly", "temperature_2m,wind_speed_10m,relative_humidity_2m")
	query.Set("forecast_days", "1")
	query.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("weather API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	samples := make([]models.WeatherSample, 0, len(forecast.Hourly.Time))
	for i, raw := range forecast.Hourly.Time {
		ts, err := parseHourlyTime(raw)
		if err != nil {
			log.Printf("[ERROR] Skipping weather sample with unparseable time %q: %v", raw, err)
			continue
		}
		sample := models.WeatherSample{Time: ts}
		if i < len(forecast.Hourly.Temperature2m) {
			sample.Temperature = forecast.Hourly.Temperature2m[i]
		}
		if i < len(forecast.Hourly.RelativeHumidity) {
			sample.Humidity = forecast.Hourly.RelativeHumidity[i]
		}
		if i < len(forecast.Hourly.WindSpeed10m) {
			sample.WindSpeed = forecast.Hourly.WindSpeed10m[i]
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("weather API returned no hourly samples")
	}

	return samples, nil
}

func parseHourlyTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(hourlyTimeLayout, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// ClosestSample picks the sample whose timestamp has the minimum absolute
// distance to now. On exact ties the earlier sample wins, which for
// chronologically ordered input means the first match.
func ClosestSample(samples []models.WeatherSample, now time.Time) (models.WeatherSample, error) {
	if len(samples) == 0 {
		return models.WeatherSample{}, fmt.Errorf("no weather samples to choose from")
	}

	return lo.MinBy(samples, func(a, b models.WeatherSample) bool {
		return absoluteDelta(a.Time, now) < absoluteDelta(b.Time, now)
	}), nil
}

func absoluteDelta(t, now time.Time) time.Duration {
	d := t.Sub(now)
	if d < 0 {
		return -d
	}
	return d
}
