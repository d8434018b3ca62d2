package state

import (
	"sync"

	"holidayplanner/models"
)

const (
	defaultCenterLatitude  = 0
	defaultCenterLongitude = 0
	defaultZoom            = 2
)

// Store holds the shared map and chat state the tool side effects write and
// the presentation layer reads. All mutation goes through the setters below;
// each setter commits independently, so a reader may observe intermediate
// states between two mutations of the same tool call.
type Store struct {
	mu              sync.Mutex
	centerLatitude  float64
	centerLongitude float64
	zoom            int
	markers         []models.Marker
	messages        []models.ChatMessage
}

func NewStore() *Store {
	return &Store{
		centerLatitude:  defaultCenterLatitude,
		centerLongitude: defaultCenterLongitude,
		zoom:            defaultZoom,
	}
}

func (s *Store) SetMapCenter(latitude, longitude float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centerLatitude = latitude
	s.centerLongitude = longitude
}

func (s *Store) SetZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

func (s *Store) AppendMarker(marker models.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, marker)
}

func (s *Store) AppendMessage(message models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

// MapState returns a copy of the current map state.
func (s *Store) MapState() models.MapState {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers := make([]models.Marker, len(s.markers))
	copy(markers, s.markers)

	return models.MapState{
		CenterLatitude:  s.centerLatitude,
		CenterLongitude: s.centerLongitude,
		Zoom:            s.zoom,
		Markers:         markers,
	}
}

// Messages returns a copy of the conversation log in append order.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]models.ChatMessage, len(s.messages))
	copy(messages, s.messages)
	return messages
}

// Reset discards all accumulated state and restores the map defaults. Used
// when the conversation thread is reset.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centerLatitude = defaultCenterLatitude
	s.centerLongitude = defaultCenterLongitude
	s.zoom = defaultZoom
	s.markers = nil
	s.messages = nil
}
