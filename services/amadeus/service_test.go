package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newFakeAmadeus(t *testing.T, tokenRequests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/security/oauth2/token":
			atomic.AddInt32(tokenRequests, 1)
			if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
				http.Error(w, `{"errors":[{"title":"bad grant"}]}`, http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"access_token":"tok-123","expires_in":1799}`)
		case !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-123"):
			http.Error(w, `{"errors":[{"title":"Unauthorized"}]}`, http.StatusUnauthorized)
		case r.URL.Path == "/v1/reference-data/locations/airports":
			fmt.Fprint(w, `{"data":[
				{"name":"CHARLES DE GAULLE","geoCode":{"latitude":49.01,"longitude":2.55}},
				{"name":"ORLY","geoCode":{"latitude":48.73,"longitude":2.37}},
				{"name":"BEAUVAIS","geoCode":{"latitude":49.45,"longitude":2.11}}
			]}`)
		case r.URL.Path == "/v1/reference-data/locations/pois":
			fmt.Fprint(w, `{"data":[
				{"name":"Eiffel Tower","category":"SIGHTS","geoCode":{"latitude":48.858,"longitude":2.294}}
			]}`)
		case r.URL.Path == "/v1/reference-data/locations/hotels/by-city":
			if r.URL.Query().Get("cityCode") != "PAR" {
				http.Error(w, `{"errors":[{"detail":"Invalid city code"}]}`, http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"data":[
				{"hotelId":"H1","name":"Hotel Lutetia","rating":"5","geoCode":{"latitude":48.851,"longitude":2.326}},
				{"hotelId":"H2","name":"Hotel du Nord","geoCode":{"latitude":48.872,"longitude":2.366}}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAirportsNear(t *testing.T) {
	var tokenRequests int32
	server := newFakeAmadeus(t, &tokenRequests)
	defer server.Close()

	service := NewService("id", "secret")
	service.baseURL = server.URL

	airports, err := service.AirportsNear(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("AirportsNear returned error: %v", err)
	}
	if len(airports) != 3 {
		t.Fatalf("expected 3 airports, got %d", len(airports))
	}
	if airports[0].Name != "CHARLES DE GAULLE" || airports[0].Latitude != 49.01 {
		t.Errorf("unexpected first airport: %+v", airports[0])
	}
}

func TestHotelsByCity(t *testing.T) {
	var tokenRequests int32
	server := newFakeAmadeus(t, &tokenRequests)
	defer server.Close()

	service := NewService("id", "secret")
	service.baseURL = server.URL

	hotels, err := service.HotelsByCity(context.Background(), "PAR")
	if err != nil {
		t.Fatalf("HotelsByCity returned error: %v", err)
	}
	if len(hotels) != 2 {
		t.Fatalf("expected 2 hotels, got %d", len(hotels))
	}
	if hotels[0].Name != "Hotel Lutetia" || hotels[0].Rating != 5 || hotels[0].HotelID != "H1" {
		t.Errorf("unexpected first hotel: %+v", hotels[0])
	}
	if hotels[1].Rating != 0 {
		t.Errorf("hotel without rating should keep zero rating, got %d", hotels[1].Rating)
	}
}

func TestTokenIsCachedAcrossRequests(t *testing.T) {
	var tokenRequests int32
	server := newFakeAmadeus(t, &tokenRequests)
	defer server.Close()

	service := NewService("id", "secret")
	service.baseURL = server.URL

	ctx := context.Background()
	if _, err := service.AirportsNear(ctx, 48.85, 2.35); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := service.PointsOfInterestNear(ctx, 48.85, 2.35); err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	if got := atomic.LoadInt32(&tokenRequests); got != 1 {
		t.Errorf("expected exactly one token request, got %d", got)
	}
}

func TestUpstreamErrorTextIsPreserved(t *testing.T) {
	var tokenRequests int32
	server := newFakeAmadeus(t, &tokenRequests)
	defer server.Close()

	service := NewService("id", "secret")
	service.baseURL = server.URL

	_, err := service.HotelsByCity(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected an error for an invalid city code")
	}
	if !strings.Contains(err.Error(), "Invalid city code") {
		t.Errorf("upstream detail missing from error: %v", err)
	}
}
