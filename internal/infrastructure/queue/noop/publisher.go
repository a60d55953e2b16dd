package noop

import (
	"context"

	"docshield/internal/core/domain"
)

// Publisher discards audit events. Used when no broker is configured.
type Publisher struct{}

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishDocumentIssued(context.Context, string) error {
	return nil
}

func (p *Publisher) PublishVerification(context.Context, string, domain.Verdict) error {
	return nil
}
