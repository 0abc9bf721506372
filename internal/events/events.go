// Package events publishes product stock changes to interested consumers.
package events

import (
	"context"
	"time"

	"franchise-inventory/internal/models"
)

type Type string

const (
	ProductCreated Type = "product.created"
	ProductUpdated Type = "product.updated"
	ProductDeleted Type = "product.deleted"
)

// Event describes a committed product mutation.
type Event struct {
	Type        Type      `json:"type"`
	ProductID   string    `json:"productId"`
	FranchiseID string    `json:"franchiseId,omitempty"`
	BranchID    string    `json:"branchId,omitempty"`
	Name        string    `json:"name,omitempty"`
	Stock       int       `json:"stock"`
	Location    string    `json:"location"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewProductEvent builds an event for p stored at loc.
func NewProductEvent(t Type, p models.Product, loc models.ProductLocation, now time.Time) Event {
	return Event{
		Type:        t,
		ProductID:   p.ID,
		FranchiseID: p.FranchiseID,
		BranchID:    p.BranchID,
		Name:        p.Name,
		Stock:       p.Stock,
		Location:    string(loc.Strategy()),
		OccurredAt:  now,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
