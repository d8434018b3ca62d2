package main

import (
	"fmt"
	"log"
	"net/http"

	"holidayplanner/config"
	"holidayplanner/db"
	"holidayplanner/handlers"
	"holidayplanner/services/amadeus"
	"holidayplanner/services/assistant"
	"holidayplanner/services/itinerary"
	"holidayplanner/services/openai"
	"holidayplanner/services/state"
	"holidayplanner/services/weather"
	"holidayplanner/services/wikipedia"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.OpenAIAssistantID == "" {
		log.Fatal("OPENAI_ASSISTANT_ID environment variable is required")
	}

	if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
		log.Fatal("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET environment variables are required")
	}

	sessionRepo, err := db.NewPostgresSessionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize session database: %v", err)
	}
	defer sessionRepo.Close()

	store := state.NewStore()
	weatherService := weather.NewService()
	wikipediaService := wikipedia.NewService()
	travelService := amadeus.NewService(cfg.AmadeusClientID, cfg.AmadeusClientSecret)

	executor, err := assistant.NewExecutor(assistant.DefaultTools(store, weatherService, wikipediaService, travelService))
	if err != nil {
		log.Fatalf("Failed to initialize tool executor: %v", err)
	}

	threadClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIAssistantID)
	assistantService := assistant.NewService(threadClient, executor, store, sessionRepo)
	chatHandler := handlers.NewChatHandler(assistantService, store)

	itineraryService, err := itinerary.NewService(store, cfg.OpenAIAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize itinerary service: %v", err)
	}
	itineraryHandler := handlers.NewItineraryHandler(itineraryService)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	chatHandler.RegisterRoutes(router)
	itineraryHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
