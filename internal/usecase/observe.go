// Package usecase holds what the per-area use cases share.
package usecase

import (
	"errors"

	"go.uber.org/zap"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/infrastructure/metrics"
)

// Recorder logs and counts the outcome of one operation. The zero value
// discards everything.
type Recorder struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewRecorder(log *zap.Logger, m *metrics.Metrics) Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return Recorder{Log: log, Metrics: m}
}

func (r Recorder) Logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Done returns err unchanged for business failures and wrapped as
// apperr.ErrInternal for anything else.
func (r Recorder) Done(op string, err error, fields ...zap.Field) error {
	log := r.Logger().With(zap.String("op", op))
	switch {
	case err == nil:
		r.Metrics.Operation(op, "ok")
		log.Info("operation completed", fields...)
		return nil
	case apperr.IsDomain(err):
		r.Metrics.Operation(op, apperr.Code(err))
		log.Warn("operation rejected", append(fields, zap.String("code", apperr.Code(err)), zap.Error(err))...)
		return err
	default:
		r.Metrics.Operation(op, apperr.ErrInternal.Code)
		log.Error("operation failed", append(fields, zap.Error(err))...)
		if errors.Is(err, apperr.ErrInternal) {
			return err
		}
		return apperr.Internal(err)
	}
}
