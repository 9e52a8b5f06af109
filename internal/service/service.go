// Package service holds the business rules that sit between the HTTP handlers and the stores.
package service

import (
	"context"

	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
)

// begin opens a service span and returns a closer that records the outcome.
func begin(ctx context.Context, entity, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartServiceSpan(ctx, entity+"_service", method)
	return ctx, func(errp *error) {
		observability.RecordOutcome(entity, method, *errp)
		observability.EndSpan(span, *errp)
	}
}

func publish(ctx context.Context, events notifications.Publisher, ev notifications.Event) {
	if events == nil {
		return
	}
	events.Publish(ctx, ev)
}
