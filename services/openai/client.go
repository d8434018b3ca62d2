package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"holidayplanner/models"
	"holidayplanner/services/assistant"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the OpenAI Assistants API (v2): it creates threads and
// runs, polls run state and submits tool outputs. It implements
// assistant.ThreadClient.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	assistantID string
}

func NewClient(apiKey, assistantID string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 45 * time.Second},
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		assistantID: assistantID,
	}
}

type threadPayload struct {
	ID string `json:"id"`
}

func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var payload threadPayload
	if err := c.doJSON(ctx, http.MethodPost, "/threads", map[string]any{}, &payload); err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return payload.ID, nil
}

func (c *Client) CreateUserMessage(ctx context.Context, threadID, content string) error {
	body := map[string]any{
		"role":    "user",
		"content": content,
	}
	path := fmt.Sprintf("/threads/%s/messages", url.PathEscape(threadID))
	if err := c.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to create user message: %w", err)
	}
	return nil
}

type runToolPayload struct {
	Type     string                   `json:"type"`
	Function assistant.FunctionSchema `json:"function"`
}

type runPayload struct {
	ID             string `json:"id"`
	ThreadID       string `json:"thread_id"`
	Status         string `json:"status"`
	RequiredAction *struct {
		SubmitToolOutputs struct {
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

func (p runPayload) toRun() models.Run {
	run := models.Run{
		ID:       p.ID,
		ThreadID: p.ThreadID,
		Status:   models.RunStatus(p.Status),
	}
	if p.RequiredAction != nil {
		for _, call := range p.RequiredAction.SubmitToolOutputs.ToolCalls {
			run.ToolCalls = append(run.ToolCalls, models.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
			})
		}
	}
	if p.LastError != nil {
		run.LastError = p.LastError.Message
	}
	return run
}

func (c *Client) CreateRun(ctx context.Context, threadID string, tools []assistant.FunctionSchema) (models.Run, error) {
	runTools := make([]runToolPayload, 0, len(tools))
	for _, schema := range tools {
		runTools = append(runTools, runToolPayload{Type: "function", Function: schema})
	}
	body := map[string]any{
		"assistant_id": c.assistantID,
		"tools":        runTools,
	}

	var payload runPayload
	path := fmt.Sprintf("/threads/%s/runs", url.PathEscape(threadID))
	if err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		return models.Run{}, fmt.Errorf("failed to create run: %w", err)
	}
	return payload.toRun(), nil
}

func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (models.Run, error) {
	var payload runPayload
	path := fmt.Sprintf("/threads/%s/runs/%s", url.PathEscape(threadID), url.PathEscape(runID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		// A run can 404 right after creation before it becomes readable.
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.statusCode == http.StatusNotFound {
			return models.Run{}, fmt.Errorf("%s: %w", apiErr.message, assistant.ErrRunNotFound)
		}
		return models.Run{}, err
	}
	return payload.toRun(), nil
}

func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []models.ToolOutput) error {
	body := map[string]any{
		"tool_outputs": outputs,
	}
	path := fmt.Sprintf("/threads/%s/runs/%s/submit_tool_outputs", url.PathEscape(threadID), url.PathEscape(runID))
	if err := c.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to submit tool outputs: %w", err)
	}
	return nil
}

type messageListPayload struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// LatestAssistantMessage fetches the newest message on the thread and
// concatenates its text blocks.
func (c *Client) LatestAssistantMessage(ctx context.Context, threadID string) (models.ChatMessage, error) {
	var payload messageListPayload
	path := fmt.Sprintf("/threads/%s/messages?limit=1&order=desc", url.PathEscape(threadID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return models.ChatMessage{}, fmt.Errorf("failed to list messages: %w", err)
	}

	if len(payload.Data) == 0 || payload.Data[0].Role != "assistant" {
		return models.ChatMessage{}, fmt.Errorf("no assistant message on thread %s", threadID)
	}

	var text string
	for _, block := range payload.Data[0].Content {
		if block.Type == "text" {
			text += block.Text.Value
		}
	}
	if text == "" {
		return models.ChatMessage{}, fmt.Errorf("assistant message on thread %s has no text content", threadID)
	}

	return models.ChatMessage{Role: models.RoleAssistant, Content: text}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError carries the HTTP status alongside the API's own error message.
type apiError struct {
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("OpenAI API error (status %d): %s", e.statusCode, e.message)
}

// parseAPIError surfaces the API's own error message when one is present.
func parseAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apiError{statusCode: resp.StatusCode, message: "unreadable response body"}
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return &apiError{statusCode: resp.StatusCode, message: payload.Error.Message}
	}
	return &apiError{statusCode: resp.StatusCode, message: string(raw)}
}
