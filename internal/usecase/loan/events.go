package loan

import (
	"context"
	"time"
)

// Event types published by the workflow.
const (
	EventBorrowed = "loan.borrowed"
	EventReturned = "loan.returned"
)

// Event describes a committed loan state transition.
type Event struct {
	Type       string    `json:"type"`
	LoanID     string    `json:"loan_id"`
	UserID     string    `json:"user_id"`
	Roll       string    `json:"roll"`
	BookID     string    `json:"book_id"`
	BookCode   string    `json:"book_code"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers loan events after the transition has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
