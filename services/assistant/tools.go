package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"holidayplanner/models"
	"holidayplanner/services/state"
	"holidayplanner/services/weather"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

const (
	maxAirportResults = 2
	maxPOIResults     = 5
	maxHotelResults   = 5

	searchResultZoom = 10
	weatherZoom      = 15
)

// AssistantTool is one assistant-invocable capability. FunctionSchema is the
// wire contract advertised to the model; Call decodes the same parameters, so
// schema and implementation cannot drift.
type AssistantTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	FunctionSchema() FunctionSchema
}

// FunctionSchema describes a tool in the function-calling wire format:
// name, description and a JSON-schema object for the parameters.
type FunctionSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// WeatherService is the forecast lookup the temperature tool depends on.
type WeatherService interface {
	HourlyForecast(ctx context.Context, latitude, longitude float64) ([]models.WeatherSample, error)
}

// WikipediaService is the encyclopedia lookup the wikipedia tool depends on.
type WikipediaService interface {
	PageSummaries(ctx context.Context, query string) (string, error)
}

// TravelDataService covers the Amadeus lookups the airport, point of interest
// and hotel tools depend on.
type TravelDataService interface {
	AirportsNear(ctx context.Context, latitude, longitude float64) ([]models.Airport, error)
	PointsOfInterestNear(ctx context.Context, latitude, longitude float64) ([]models.PointOfInterest, error)
	HotelsByCity(ctx context.Context, cityCode string) ([]models.HotelOffer, error)
	ResolveCityCode(input string) (string, error)
}

func generateFunctionSchema[T any](name, description string) FunctionSchema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""

	return FunctionSchema{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}
}

// DefaultTools wires the full tool set against the shared state store and the
// collaborator services, in the order they are advertised to the model.
func DefaultTools(store *state.Store, weatherSvc WeatherService, wikiSvc WikipediaService, travelSvc TravelDataService) []AssistantTool {
	return []AssistantTool{
		NewUpdateMapTool(store),
		NewAddMarkerTool(store),
		NewCurrentTemperatureTool(store, weatherSvc),
		NewSearchWikipediaTool(wikiSvc),
		NewNearestAirportTool(store, travelSvc),
		NewSearchPointOfInterestTool(store, travelSvc),
		NewSearchHotelsTool(store, travelSvc),
	}
}

type UpdateMapInput struct {
	Longitude float64 `json:"longitude" jsonschema:"required,description=Longitude of the location to center the map on"`
	Latitude  float64 `json:"latitude" jsonschema:"required,description=Latitude of the location to center the map on"`
	Zoom      int     `json:"zoom" jsonschema:"required,description=Zoom level of the map"`
}

type UpdateMapTool struct {
	store *state.Store
}

func NewUpdateMapTool(store *state.Store) UpdateMapTool {
	return UpdateMapTool{store: store}
}

func (u UpdateMapTool) Name() string {
	return "update_map"
}

func (u UpdateMapTool) Description() string {
	return "Update map to center on a particular location"
}

func (u UpdateMapTool) Call(ctx context.Context, input string) (string, error) {
	var params UpdateMapInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse update map tool input: %v", err)
	}

	u.store.SetMapCenter(params.Latitude, params.Longitude)
	u.store.SetZoom(params.Zoom)
	return "Map updated", nil
}

func (u UpdateMapTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[UpdateMapInput](u.Name(), u.Description())
}

type AddMarkerInput struct {
	Longitude float64 `json:"longitude" jsonschema:"required,description=Longitude of the location of the marker"`
	Latitude  float64 `json:"latitude" jsonschema:"required,description=Latitude of the location of the marker"`
	Label     string  `json:"label" jsonschema:"required,description=Text to display on the marker"`
}

type AddMarkerTool struct {
	store *state.Store
}

func NewAddMarkerTool(store *state.Store) AddMarkerTool {
	return AddMarkerTool{store: store}
}

func (a AddMarkerTool) Name() string {
	return "add_marker"
}

func (a AddMarkerTool) Description() string {
	return "Add marker to the map"
}

func (a AddMarkerTool) Call(ctx context.Context, input string) (string, error) {
	var params AddMarkerInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse add marker tool input: %v", err)
	}

	a.store.AppendMarker(models.Marker{
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		Label:     params.Label,
		Category:  models.MarkerGeneric,
	})
	return "Marker added", nil
}

func (a AddMarkerTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[AddMarkerInput](a.Name(), a.Description())
}

type CurrentTemperatureInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"required,description=Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"required,description=Longitude of the location"`
}

type CurrentTemperatureTool struct {
	store   *state.Store
	weather WeatherService
}

func NewCurrentTemperatureTool(store *state.Store, weatherSvc WeatherService) CurrentTemperatureTool {
	return CurrentTemperatureTool{store: store, weather: weatherSvc}
}

func (c CurrentTemperatureTool) Name() string {
	return "get_current_temperature"
}

func (c CurrentTemperatureTool) Description() string {
	return "Fetch current temperature, humidity and wind speed for given coordinates"
}

func (c CurrentTemperatureTool) Call(ctx context.Context, input string) (string, error) {
	var params CurrentTemperatureInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse current temperature tool input: %v", err)
	}

	c.store.SetMapCenter(params.Latitude, params.Longitude)
	c.store.SetZoom(weatherZoom)

	samples, err := c.weather.HourlyForecast(ctx, params.Latitude, params.Longitude)
	if err != nil {
		return "", err
	}

	sample, err := weather.ClosestSample(samples, time.Now().UTC())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Current temperature: %.1f°C\nCurrent humidity: %.0f%%\nCurrent wind speed: %.1fm/s",
		sample.Temperature, sample.Humidity, sample.WindSpeed), nil
}

func (c CurrentTemperatureTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[CurrentTemperatureInput](c.Name(), c.Description())
}

type SearchWikipediaInput struct {
	Query string `json:"query" jsonschema:"required,description=The query to search Wikipedia"`
}

type SearchWikipediaTool struct {
	wikipedia WikipediaService
}

func NewSearchWikipediaTool(wikiSvc WikipediaService) SearchWikipediaTool {
	return SearchWikipediaTool{wikipedia: wikiSvc}
}

func (s SearchWikipediaTool) Name() string {
	return "search_wikipedia"
}

func (s SearchWikipediaTool) Description() string {
	return "Run Wikipedia search and get page summaries"
}

func (s SearchWikipediaTool) Call(ctx context.Context, input string) (string, error) {
	var params SearchWikipediaInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse search wikipedia tool input: %v", err)
	}

	return s.wikipedia.PageSummaries(ctx, params.Query)
}

func (s SearchWikipediaTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[SearchWikipediaInput](s.Name(), s.Description())
}

type NearestAirportInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"required,description=Latitude of the location to fetch the nearest airport for"`
	Longitude float64 `json:"longitude" jsonschema:"required,description=Longitude of the location to fetch the nearest airport for"`
}

type NearestAirportTool struct {
	store  *state.Store
	travel TravelDataService
}

func NewNearestAirportTool(store *state.Store, travelSvc TravelDataService) NearestAirportTool {
	return NearestAirportTool{store: store, travel: travelSvc}
}

func (n NearestAirportTool) Name() string {
	return "nearest_relevant_airport"
}

func (n NearestAirportTool) Description() string {
	return "Fetch the nearest airports for given coordinates"
}

func (n NearestAirportTool) Call(ctx context.Context, input string) (string, error) {
	var params NearestAirportInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse nearest airport tool input: %v", err)
	}

	airports, err := n.travel.AirportsNear(ctx, params.Latitude, params.Longitude)
	if err != nil {
		return "", err
	}
	if len(airports) == 0 {
		return "No airports found near the given coordinates", nil
	}
	if len(airports) > maxAirportResults {
		airports = airports[:maxAirportResults]
	}

	n.store.SetMapCenter(airports[0].Latitude, airports[0].Longitude)
	n.store.SetZoom(searchResultZoom)
	for _, airport := range airports {
		n.store.AppendMarker(models.Marker{
			Latitude:  airport.Latitude,
			Longitude: airport.Longitude,
			Label:     airport.Name,
			Category:  models.MarkerAirport,
		})
	}

	result, err := json.Marshal(airports)
	if err != nil {
		return "", fmt.Errorf("failed to marshal airports: %v", err)
	}
	return string(result), nil
}

func (n NearestAirportTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[NearestAirportInput](n.Name(), n.Description())
}

type SearchPointOfInterestInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"required,description=Latitude of the location to fetch the nearest points of interest"`
	Longitude float64 `json:"longitude" jsonschema:"required,description=Longitude of the location to fetch the nearest points of interest"`
}

type SearchPointOfInterestTool struct {
	store  *state.Store
	travel TravelDataService
}

func NewSearchPointOfInterestTool(store *state.Store, travelSvc TravelDataService) SearchPointOfInterestTool {
	return SearchPointOfInterestTool{store: store, travel: travelSvc}
}

func (p SearchPointOfInterestTool) Name() string {
	return "search_point_of_interest"
}

func (p SearchPointOfInterestTool) Description() string {
	return "Fetch the nearest points of interest for given coordinates"
}

func (p SearchPointOfInterestTool) Call(ctx context.Context, input string) (string, error) {
	var params SearchPointOfInterestInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse search point of interest tool input: %v", err)
	}

	pois, err := p.travel.PointsOfInterestNear(ctx, params.Latitude, params.Longitude)
	if err != nil {
		return "", err
	}
	if len(pois) == 0 {
		return "No points of interest found near the given coordinates", nil
	}
	if len(pois) > maxPOIResults {
		pois = pois[:maxPOIResults]
	}

	p.store.SetMapCenter(pois[0].Latitude, pois[0].Longitude)
	p.store.SetZoom(searchResultZoom)
	for _, poi := range pois {
		p.store.AppendMarker(models.Marker{
			Latitude:  poi.Latitude,
			Longitude: poi.Longitude,
			Label:     poi.Name,
			Category:  models.MarkerPointOfInterest,
		})
	}

	result, err := json.Marshal(pois)
	if err != nil {
		return "", fmt.Errorf("failed to marshal points of interest: %v", err)
	}
	return string(result), nil
}

func (p SearchPointOfInterestTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[SearchPointOfInterestInput](p.Name(), p.Description())
}

type SearchHotelsInput struct {
	CityCode string `json:"city_code" jsonschema:"required,description=City code or city name to fetch hotels for"`
}

type SearchHotelsTool struct {
	store  *state.Store
	travel TravelDataService
}

func NewSearchHotelsTool(store *state.Store, travelSvc TravelDataService) SearchHotelsTool {
	return SearchHotelsTool{store: store, travel: travelSvc}
}

func (h SearchHotelsTool) Name() string {
	return "search_hotels"
}

func (h SearchHotelsTool) Description() string {
	return "Fetch hotels for given city code"
}

func (h SearchHotelsTool) Call(ctx context.Context, input string) (string, error) {
	var params SearchHotelsInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse search hotels tool input: %v", err)
	}

	cityCode, err := h.travel.ResolveCityCode(params.CityCode)
	if err != nil {
		return "", err
	}

	hotels, err := h.travel.HotelsByCity(ctx, cityCode)
	if err != nil {
		return "", err
	}
	if len(hotels) == 0 {
		return fmt.Sprintf("No hotels found for city %s", cityCode), nil
	}
	if len(hotels) > maxHotelResults {
		hotels = hotels[:maxHotelResults]
	}

	markers := lo.Map(hotels, func(hotel models.HotelOffer, _ int) models.Marker {
		return models.Marker{
			Latitude:  hotel.Latitude,
			Longitude: hotel.Longitude,
			Label:     hotel.Name,
			Category:  models.MarkerHotel,
		}
	})
	for _, marker := range markers {
		h.store.AppendMarker(marker)
	}
	h.store.SetMapCenter(hotels[0].Latitude, hotels[0].Longitude)
	h.store.SetZoom(searchResultZoom)

	result, err := json.Marshal(hotels)
	if err != nil {
		return "", fmt.Errorf("failed to marshal hotels: %v", err)
	}
	return string(result), nil
}

func (h SearchHotelsTool) FunctionSchema() FunctionSchema {
	return generateFunctionSchema[SearchHotelsInput](h.Name(), h.Description())
}
