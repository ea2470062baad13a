// Package service holds the business logic of the Inkpost server: input
// validation, ownership checks, reconciliation of post tags and sections, and
// orchestration of the store, search index and metrics.
//
// Every mutation of an owned entity goes through requireOwner, so a caller who
// does not own the entity gets the same NOT_FOUND error as for a missing one.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkpost/inkpost-server/internal/domain"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/telemetry"
)

// requireOwner converts a store lookup into an owned entity. A missing entity
// and one owned by somebody else both produce NOT_FOUND with the given noun.
func requireOwner[T domain.Owned](entity T, err error, userID int64, noun string) (T, error) {
	var zero T
	if err != nil {
		return zero, notFoundOr(err, noun)
	}
	if !domain.OwnedBy(entity, userID) {
		return zero, domainerrors.NotFoundf("%s not found", noun)
	}
	return entity, nil
}

// notFoundOr maps store.ErrNotFound to a NOT_FOUND domain error and wraps
// anything else.
func notFoundOr(err error, noun string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s not found", noun)
	}
	return fmt.Errorf("load %s: %w", noun, err)
}

// startSpan starts a service span tagged with the acting user.
func startSpan(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attribute.Int64("inkpost.user_id", userID)))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
