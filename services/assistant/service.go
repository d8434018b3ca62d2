package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"holidayplanner/db"
	"holidayplanner/models"
	"holidayplanner/services/state"
)

// ErrRunNotFound is reported by a ThreadClient when a run cannot be retrieved
// by its identifier. Right after creation this is an expected consistency gap,
// not a failure; the poller retries it for a bounded window.
var ErrRunNotFound = errors.New("run not found")

// ErrRunInProgress rejects a new user message while the previous run is still
// unresolved. Only one run per thread may be active.
var ErrRunInProgress = errors.New("a run is already in progress for this thread")

// ThreadClient is the remote assistant provider: thread and run lifecycle plus
// message access. Implemented by services/openai.
type ThreadClient interface {
	CreateThread(ctx context.Context) (string, error)
	CreateUserMessage(ctx context.Context, threadID, content string) error
	CreateRun(ctx context.Context, threadID string, tools []FunctionSchema) (models.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (models.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []models.ToolOutput) error
	LatestAssistantMessage(ctx context.Context, threadID string) (models.ChatMessage, error)
}

// RunError reports a run that reached a terminal failure state.
type RunError struct {
	Status  models.RunStatus
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run ended with status %s", e.Status)
	}
	return fmt.Sprintf("run ended with status %s: %s", e.Status, e.Message)
}

// Service drives one conversation thread: it submits user messages, polls the
// resulting run through its state machine and dispatches tool calls whenever
// the run requires action.
type Service struct {
	client   ThreadClient
	executor *Executor
	store    *state.Store
	sessions db.SessionRepository

	pollInterval time.Duration
	notFoundWait time.Duration

	mu        sync.Mutex
	threadID  string
	runActive bool
}

func NewService(client ThreadClient, executor *Executor, store *state.Store, sessions db.SessionRepository) *Service {
	return &Service{
		client:       client,
		executor:     executor,
		store:        store,
		sessions:     sessions,
		pollInterval: 100 * time.Millisecond,
		notFoundWait: 5 * time.Second,
	}
}

// SendMessage appends the user's message to the thread, runs the assistant to
// completion and returns the updated transcript. It blocks until the run
// reaches a terminal state or ctx is cancelled.
func (s *Service) SendMessage(ctx context.Context, text string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	if s.runActive {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.runActive = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.runActive = false
		s.mu.Unlock()
	}()

	threadID, err := s.ensureThread(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.client.CreateUserMessage(ctx, threadID, text); err != nil {
		return nil, fmt.Errorf("failed to create user message: %w", err)
	}
	s.appendMessage(threadID, models.ChatMessage{Role: models.RoleUser, Content: text})

	run, err := s.client.CreateRun(ctx, threadID, s.executor.Schemas())
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	log.Printf("[INFO] Created run %s for thread %s", run.ID, threadID)

	if err := s.pollRun(ctx, threadID, run.ID); err != nil {
		return nil, err
	}

	return s.store.Messages(), nil
}

// pollRun drives a run to a terminal state. Each iteration observes the
// remote status and either dispatches tool calls, finishes, fails, or waits
// one tick.
func (s *Service) pollRun(ctx context.Context, threadID, runID string) error {
	visible := false
	var notFoundSince time.Time

	for {
		run, err := s.client.RetrieveRun(ctx, threadID, runID)
		switch {
		case errors.Is(err, ErrRunNotFound) && !visible:
			// Freshly created runs may not be retrievable yet. Keep
			// polling, but not forever.
			if notFoundSince.IsZero() {
				notFoundSince = time.Now()
			}
			if time.Since(notFoundSince) > s.notFoundWait {
				log.Printf("[ERROR] Run %s still not visible after %s", runID, s.notFoundWait)
				return &RunError{
					Status:  models.RunStatusFailed,
					Message: fmt.Sprintf("run %s was not visible within %s of creation", runID, s.notFoundWait),
				}
			}
		case err != nil:
			return fmt.Errorf("failed to retrieve run %s: %w", runID, err)
		default:
			visible = true

			switch run.Status {
			case models.RunStatusRequiresAction:
				if err := s.dispatchToolCalls(ctx, threadID, run); err != nil {
					return err
				}

			case models.RunStatusCompleted:
				message, err := s.client.LatestAssistantMessage(ctx, threadID)
				if err != nil {
					return fmt.Errorf("failed to fetch assistant response: %w", err)
				}
				s.appendMessage(threadID, message)
				log.Printf("[INFO] Run %s completed", runID)
				return nil

			case models.RunStatusFailed, models.RunStatusCancelled, models.RunStatusExpired:
				log.Printf("[ERROR] Run %s ended with status %s: %s", runID, run.Status, run.LastError)
				return &RunError{Status: run.Status, Message: run.LastError}
			}
			// queued, in_progress and any transitional status: wait a
			// tick and poll again.
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// dispatchToolCalls executes every pending tool call in order and submits the
// complete output batch in one call. Tool failures never abort the run; they
// are folded into the outputs by the executor.
func (s *Service) dispatchToolCalls(ctx context.Context, threadID string, run models.Run) error {
	log.Printf("[INFO] Run %s requires action: %d tool call(s)", run.ID, len(run.ToolCalls))

	outputs := make([]models.ToolOutput, 0, len(run.ToolCalls))
	for _, call := range run.ToolCalls {
		output := s.executor.Execute(ctx, call)
		outputs = append(outputs, output)
		s.appendMessage(threadID, models.ChatMessage{
			Role:       models.RoleTool,
			Content:    output.Output,
			ToolCallID: output.ToolCallID,
		})
	}

	if err := s.client.SubmitToolOutputs(ctx, threadID, run.ID, outputs); err != nil {
		return fmt.Errorf("failed to submit tool outputs for run %s: %w", run.ID, err)
	}
	return nil
}

// ResetThread abandons the current thread and run identifiers and clears all
// local state. Unresolved remote work is simply discarded.
func (s *Service) ResetThread() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runActive {
		return ErrRunInProgress
	}

	if s.threadID != "" {
		if err := s.sessions.DeleteThread(s.threadID); err != nil {
			log.Printf("[ERROR] Failed to delete persisted transcript for thread %s: %v", s.threadID, err)
		}
	}

	s.threadID = ""
	s.store.Reset()
	log.Printf("[INFO] Thread reset")
	return nil
}

func (s *Service) ensureThread(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.threadID != "" {
		return s.threadID, nil
	}

	threadID, err := s.client.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	s.threadID = threadID
	log.Printf("[INFO] Created thread %s", threadID)
	return threadID, nil
}

// appendMessage mirrors a message into the store and the persisted
/// transcript. Persistence failures are logged, not fatal: the in-memory
// transcript is the source of truth for the running session.
func (s *Service) appendMessage(threadID string, message models.ChatMessage) {
	s.store.AppendMessage(message)
	if err := s.sessions.SaveMessage(threadID, message); err != nil {
		log.Printf("[ERROR] Failed to persist message for thread %s: %v", threadID, err)
	}
}
