package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one entry in the conversation log. Messages are append-only:
// once created they are never edited, and their insertion order is the
// conversation order shown to the user.
type ChatMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// ChatStateResponse is returned by the chat endpoints: the full transcript
// plus the map the conversation has built up so far.
type ChatStateResponse struct {
	Messages []ChatMessage `json:"messages"`
	Map      MapState      `json:"map"`
}

type ItineraryResponse struct {
	Content string `json:"content"`
}
