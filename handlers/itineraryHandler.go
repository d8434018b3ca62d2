package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"holidayplanner/models"
	"holidayplanner/services/itinerary"

	"github.com/gorilla/mux"
)

type ItineraryHandler struct {
	service *itinerary.Service
}

func NewItineraryHandler(service *itinerary.Service) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

func (h *ItineraryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/itinerary", h.GenerateItinerary).Methods("POST")
}

func (h *ItineraryHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received itinerary request")

	content, err := h.service.GenerateItinerary(r.Context())
	if err != nil {
		log.Printf("[ERROR] Itinerary generation failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[INFO] Itinerary generated successfully")
	h.writeJSONResponse(w, http.StatusOK, models.ItineraryResponse{Content: content})
}

func (h *ItineraryHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ItineraryHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
