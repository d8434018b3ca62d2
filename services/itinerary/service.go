package itinerary

import (
	"context"
	"fmt"
	"log"
	"strings"

	"holidayplanner/models"
	"holidayplanner/services/state"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Service turns the current planning session into a written day-by-day
// itinerary. It works off the transcript and the markers collected on the
// map so far.
type Service struct {
	store *state.Store
	llm   llms.Model
}

func NewService(store *state.Store, apiKey string) (*Service, error) {
	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &Service{store: store, llm: llm}, nil
}

func (s *Service) GenerateItinerary(ctx context.Context) (string, error) {
	messages := s.store.Messages()
	if len(messages) == 0 {
		return "", fmt.Errorf("no conversation to summarize yet")
	}

	prompt := buildItineraryPrompt(messages, s.store.MapState().Markers)

	log.Printf("[INFO] Calling LLM for itinerary generation")
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		log.Printf("[ERROR] Failed to generate itinerary: %v", err)
		return "", fmt.Errorf("failed to generate itinerary: %w", err)
	}

	return strings.TrimSpace(completion), nil
}

func buildItineraryPrompt(messages []models.ChatMessage, markers []models.Marker) string {
	var sb strings.Builder
	sb.WriteString("You are a travel planner. Based on the conversation and the places ")
	sb.WriteString("collected below, write a concise day-by-day itinerary for the trip. ")
	sb.WriteString("Only include places that were actually discussed.\n\n")

	sb.WriteString("Conversation:\n")
	for _, message := range messages {
		if message.Role == models.RoleTool {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", message.Role, message.Content))
	}

	if len(markers) > 0 {
		sb.WriteString("\nPlaces on the map:\n")
		for _, marker := range markers {
			sb.WriteString(fmt.Sprintf("- %s (%s) at %.4f, %.4f\n",
				marker.Label, marker.Category, marker.Latitude, marker.Longitude))
		}
	}

	return sb.String()
}
