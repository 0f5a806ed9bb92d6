// internal/bulk/bulk.go
package bulk

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/apperror"
)

// Operation is one bound per-id mutation: the validated form of a bulk
// request for a single record.
type Operation interface {
	// Validate returns the field errors of the bound input, if any.
	Validate() []apperror.FieldError
	// Execute performs the mutation and returns the id it acted on.
	Execute(ctx context.Context) (uint, error)
}

// Builder binds the operation for id. A not-found error skips the id.
type Builder[O Operation] func(ctx context.Context, id uint) (O, error)

type Result struct {
	SuccessIDs []uint                `json:"successIds"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
}

// Apply runs build + validate + execute for every id, in order. Ids whose
// record is missing are skipped; invalid ids contribute field errors; a
// domain error raised by Execute is logged and the id is left out of
// SuccessIDs. Any other error aborts the run.
func Apply[O Operation](ctx context.Context, ids []uint, build Builder[O]) (*Result, error) {
	result := &Result{SuccessIDs: []uint{}}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		op, err := build(ctx, id)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return result, fmt.Errorf("bind id %d: %w", id, err)
		}

		if fieldErrors := op.Validate(); len(fieldErrors) > 0 {
			result.Errors = append(result.Errors, fieldErrors...)
			continue
		}

		doneID, err := op.Execute(ctx)
		if err != nil {
			if apperror.IsNotFound(err) || apperror.IsDomain(err) {
				logrus.WithFields(logrus.Fields{
					"id":    id,
					"code":  apperror.Code(err),
					"error": err.Error(),
				}).Warn("Bulk mutation item failed")
				continue
			}
			return result, fmt.Errorf("execute id %d: %w", id, err)
		}

		result.SuccessIDs = append(result.SuccessIDs, doneID)
	}

	return result, nil
}
