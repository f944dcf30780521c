package handle

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"pos-backoffice/internal/stock/app/services"
	"pos-backoffice/internal/stock/domain/dto"
	"pos-backoffice/internal/xpkg/apperr"
)

type StockHandler struct {
	ledger *services.LedgerService
	log    zerolog.Logger
}

func NewStockHandler(ledger *services.LedgerService, log zerolog.Logger) *StockHandler {
	return &StockHandler{
		ledger: ledger,
		log:    log,
	}
}

func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	var branchID *int64
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apperr.Validation("invalid branch_id %q", raw))
			return
		}
		branchID = &id
	}

	items, err := h.ledger.List(r.Context(), branchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	stockID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := h.ledger.Get(r.Context(), stockID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	stockID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	movements, err := h.ledger.Movements(r.Context(), stockID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

// CreateMovement records a direct RESTOCK / WASTE / ADJUST ledger entry.
func (h *StockHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Str("action", "parse_failed").Err(err).Msg("failed to parse movement request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: "failed to parse JSON"})
		return
	}

	movement, err := h.ledger.ApplyMovement(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movement)
}

func (h *StockHandler) OutOfStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.OutOfStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StockHandler) OutOfStockCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.OutOfStockCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
