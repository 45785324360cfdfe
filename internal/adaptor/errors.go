package adaptor

import (
	"errors"
	"net/http"

	"cinema-reservation/internal/reservation"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeServiceError maps service errors to status codes. Every reservation
// error carries the seats, combo or ticket ids a client needs to retry or
// to fix the data by hand.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validationErr *reservation.ValidationError
		stockErr      *reservation.StockInsufficientError
		createErr     *reservation.TicketCreateError
		writeErr      *reservation.OrderWriteError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		var details any
		if len(validationErr.Seats) > 0 {
			details = map[string]any{"seats": validationErr.Seats}
		}
		utils.ResponseBadRequest(w, err.Error(), details)

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, reservation.ErrOrderNotFound),
		errors.Is(err, reservation.ErrTicketNotFound),
		errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrRoomNotFound),
		errors.Is(err, usecase.ErrMovieNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &stockErr):
		log.Warn(operation+" failed - insufficient stock", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), map[string]any{
			"combo_id":  stockErr.ComboID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})

	case errors.Is(err, reservation.ErrSeatLocked),
		errors.Is(err, reservation.ErrTicketNotOrphan),
		errors.Is(err, reservation.ErrInvalidTransition):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	// checked before TicketCreateError: an edit that lost its tickets wraps one
	case errors.As(err, &writeErr):
		details := map[string]any{
			"ticket_ids":                   writeErr.TicketIDs,
			"deleted_ticket_ids":           nonNil(writeErr.DeletedTicketIDs),
			"rollback_failed":              nonNil(writeErr.RollbackFailed),
			"manual_reconciliation_needed": writeErr.NeedsManualReconciliation(),
		}
		if writeErr.NeedsManualReconciliation() {
			log.Error(operation+" failed - manual reconciliation needed", zap.Error(err))
			utils.ResponseInternalError(w, err.Error(), details)
			return
		}
		log.Error(operation+" failed - order store", zap.Error(err))
		utils.ResponseBadGateway(w, err.Error(), details)

	case errors.As(err, &createErr):
		details := map[string]any{
			"seat":            createErr.Seat,
			"rolled_back":     createErr.RolledBack,
			"rollback_failed": nonNil(createErr.RollbackFailed),
		}
		if database.IsUniqueViolation(err) {
			log.Warn(operation+" failed - seat already sold", zap.Error(err))
			utils.ResponseConflict(w, err.Error(), details)
			return
		}
		log.Error(operation+" failed - ticket store", zap.Error(err))
		utils.ResponseBadGateway(w, err.Error(), details)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error", nil)
	}
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
