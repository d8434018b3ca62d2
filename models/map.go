package models

// MarkerCategory selects the glyph the frontend renders for a marker.
type MarkerCategory string

const (
	MarkerAirport         MarkerCategory = "airport"
	MarkerHotel           MarkerCategory = "hotel"
	MarkerPointOfInterest MarkerCategory = "point_of_interest"
	MarkerGeneric         MarkerCategory = "generic"
)

type Marker struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Label     string         `json:"label"`
	Category  MarkerCategory `json:"category"`
}

// MapState is a snapshot of the map the conversation has built up: center,
// zoom and every marker added so far. Markers are never removed within a
// session; the list only grows until the thread is reset.
type MapState struct {
	CenterLatitude  float64  `json:"center_latitude"`
	CenterLongitude float64  `json:"center_longitude"`
	Zoom            int      `json:"zoom"`
	Markers         []Marker `json:"markers"`
}
