// Package events publishes budget notifications after expense mutations
// commit. Publishing is best-effort: a broker outage never fails a request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event types.
const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
	PlanOverspent  = "plan.overspent"
)

// BudgetEvent describes a plan's totals right after an expense mutation.
type BudgetEvent struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	PlanID     string          `json:"plan_id"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToJSON encodes the event as a message body.
func (e BudgetEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers budget events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event BudgetEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BudgetEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// Recorder keeps published events in memory. Tests use it to observe what
// the services emit.
type Recorder struct {
	Events []BudgetEvent
	Err    error
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event BudgetEvent) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, event)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Types returns the type of every recorded event in order.
func (r *Recorder) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}
