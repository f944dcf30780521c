package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-backoffice/internal/xpkg/apperr"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type insufficientStockResponse struct {
	Error                   string             `json:"error"`
	Message                 string             `json:"message"`
	InsufficientIngredients []apperr.Shortfall `json:"insufficient_ingredients"`
	Suggestion              string             `json:"suggestion"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the apperr taxonomy onto HTTP statuses. Internal errors are
// masked; their detail belongs in the logs, not the response.
func writeError(w http.ResponseWriter, err error) {
	var ise *apperr.InsufficientStockError
	if errors.As(err, &ise) {
		writeJSON(w, http.StatusBadRequest, insufficientStockResponse{
			Error:                   "insufficient_stock",
			Message:                 ise.Error(),
			InsufficientIngredients: ise.Shortfalls,
			Suggestion:              "restock the listed ingredients or reduce the order quantity",
		})
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case apperr.KindConflict:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "conflict", Message: err.Error()})
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: err.Error()})
	case apperr.KindInvalidTransition:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_transition", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"})
	}
}
