package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"holidayplanner/models"
	"holidayplanner/services/assistant"
	"holidayplanner/services/state"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	service *assistant.Service
	store   *state.Store
}

func NewChatHandler(service *assistant.Service, store *state.Store) *ChatHandler {
	return &ChatHandler{service: service, store: store}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat/message", h.SendMessage).Methods("POST")
	router.HandleFunc("/chat/state", h.GetState).Methods("GET")
	router.HandleFunc("/chat/reset", h.Reset).Methods("POST")
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received chat message request")

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode chat request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		log.Printf("[ERROR] Empty message in chat request")
		h.writeErrorResponse(w, http.StatusBadRequest, "A message is required")
		return
	}

	messages, err := h.service.SendMessage(r.Context(), req.Message)
	if err != nil {
		var runErr *assistant.RunError
		switch {
		case errors.Is(err, assistant.ErrRunInProgress):
			log.Printf("[ERROR] Rejected chat message: run already in progress")
			h.writeErrorResponse(w, http.StatusConflict, err.Error())
		case errors.As(err, &runErr):
			log.Printf("[ERROR] Run ended with status %s: %s", runErr.Status, runErr.Message)
			h.writeErrorResponse(w, http.StatusBadGateway, runErr.Error())
		default:
			log.Printf("[ERROR] Chat message processing failed: %v", err)
			h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Printf("[INFO] Chat message processed successfully")
	h.writeJSONResponse(w, http.StatusOK, models.ChatStateResponse{
		Messages: messages,
		Map:      h.store.MapState(),
	})
}

func (h *ChatHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.ChatStateResponse{
		Messages: h.store.Messages(),
		Map:      h.store.MapState(),
	})
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received chat reset request")

	if err := h.service.ResetThread(); err != nil {
		if errors.Is(err, assistant.ErrRunInProgress) {
			h.writeErrorResponse(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("[ERROR] Chat reset failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.ChatStateResponse{
		Messages: h.store.Messages(),
		Map:      h.store.MapState(),
	})
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
