package db

import (
	"database/sql"
	"fmt"

	"holidayplanner/models"

	_ "github.com/lib/pq"
)

// SessionRepository persists the chat transcript per conversation thread.
type SessionRepository interface {
	SaveMessage(threadID string, message models.ChatMessage) error
	GetMessages(threadID string) ([]models.ChatMessage, error)
	DeleteThread(threadID string) error
	Close() error
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(databaseURL string) (*PostgresSessionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSessionRepository{db: db}, nil
}

func (r *PostgresSessionRepository) SaveMessage(threadID string, message models.ChatMessage) error {
	query := `
		INSERT INTO holidayplanner.chat_messages (thread_id, role, content, tool_call_id)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(query, threadID, message.Role, message.Content, message.ToolCallID); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) GetMessages(threadID string) ([]models.ChatMessage, error) {
	query := `
		SELECT role, content, tool_call_id
		FROM holidayplanner.chat_messages
		WHERE thread_id = $1
		ORDER BY id ASC`

	rows, err := r.db.Query(query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(&message.Role, &message.Content, &message.ToolCallID); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func (r *PostgresSessionRepository) DeleteThread(threadID string) error {
	query := `DELETE FROM holidayplanner.chat_messages WHERE thread_id = $1`

	if _, err := r.db.Exec(query, threadID); err != nil {
		return fmt.Errorf("failed to delete thread messages: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Close() error {
	return r.db.Close()
}
