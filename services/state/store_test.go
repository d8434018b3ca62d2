package state

import (
	"sync"
	"testing"

	"holidayplanner/models"
)

func TestNewStoreDefaults(t *testing.T) {
	store := NewStore()

	ms := store.MapState()
	if ms.CenterLatitude != 0 || ms.CenterLongitude != 0 {
		t.Errorf("expected default center (0, 0), got (%v, %v)", ms.CenterLatitude, ms.CenterLongitude)
	}
	if ms.Zoom != 2 {
		t.Errorf("expected default zoom 2, got %d", ms.Zoom)
	}
	if len(ms.Markers) != 0 {
		t.Errorf("expected no markers, got %d", len(ms.Markers))
	}
	if len(store.Messages()) != 0 {
		t.Errorf("expected no messages, got %d", len(store.Messages()))
	}
}

func TestSetMapCenterAndZoom(t *testing.T) {
	store := NewStore()

	store.SetMapCenter(48.85, 2.35)
	store.SetZoom(12)

	ms := store.MapState()
	if ms.CenterLatitude != 48.85 || ms.CenterLongitude != 2.35 {
		t.Errorf("expected center (48.85, 2.35), got (%v, %v)", ms.CenterLatitude, ms.CenterLongitude)
	}
	if ms.Zoom != 12 {
		t.Errorf("expected zoom 12, got %d", ms.Zoom)
	}
}

func TestAppendMarkerPreservesOrder(t *testing.T) {
	store := NewStore()

	first := models.Marker{Latitude: 1, Longitude: 2, Label: "first", Category: models.MarkerAirport}
	second := models.Marker{Latitude: 3, Longitude: 4, Label: "second", Category: models.MarkerHotel}

	store.AppendMarker(first)

	before := store.MapState().Markers
	store.AppendMarker(second)
	after := store.MapState().Markers

	if len(after) != len(before)+1 {
		t.Fatalf("expected marker count to grow by one: before %d, after %d", len(before), len(after))
	}
	if after[0] != first {
		t.Errorf("prior marker changed: got %+v, want %+v", after[0], first)
	}
	if after[len(after)-1] != second {
		t.Errorf("last marker = %+v, want the appended marker %+v", after[len(after)-1], second)
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	store := NewStore()

	store.AppendMessage(models.ChatMessage{Role: models.RoleUser, Content: "m1"})
	store.AppendMessage(models.ChatMessage{Role: models.RoleAssistant, Content: "a1"})
	store.AppendMessage(models.ChatMessage{Role: models.RoleUser, Content: "m2"})

	messages := store.Messages()
	want := []string{"m1", "a1", "m2"}
	if len(messages) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(messages))
	}
	for i, content := range want {
		if messages[i].Content != content {
			t.Errorf("messages[%d].Content = %q, want %q", i, messages[i].Content, content)
		}
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	store := NewStore()
	store.AppendMarker(models.Marker{Label: "original"})

	snapshot := store.MapState()
	snapshot.Markers[0].Label = "mutated"

	if got := store.MapState().Markers[0].Label; got != "original" {
		t.Errorf("snapshot mutation leaked into the store: label = %q", got)
	}
}

func TestReset(t *testing.T) {
	store := NewStore()
	store.SetMapCenter(48.85, 2.35)
	store.SetZoom(12)
	store.AppendMarker(models.Marker{Label: "marker"})
	store.AppendMessage(models.ChatMessage{Role: models.RoleUser, Content: "hello"})

	store.Reset()

	ms := store.MapState()
	if ms.CenterLatitude != 0 || ms.CenterLongitude != 0 || ms.Zoom != 2 {
		t.Errorf("reset did not restore map defaults: %+v", ms)
	}
	if len(ms.Markers) != 0 {
		t.Errorf("expected no markers after reset, got %d", len(ms.Markers))
	}
	if len(store.Messages()) != 0 {
		t.Errorf("expected no messages after reset, got %d", len(store.Messages()))
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AppendMarker(models.Marker{Label: "m"})
			store.AppendMessage(models.ChatMessage{Role: models.RoleTool, Content: "out"})
		}()
	}
	wg.Wait()

	if got := len(store.MapState().Markers); got != 50 {
		t.Errorf("expected 50 markers, got %d", got)
	}
	if got := len(store.Messages()); got != 50 {
		t.Errorf("expected 50 messages, got %d", got)
	}
}
