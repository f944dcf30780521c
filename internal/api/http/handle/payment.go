package handle

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"pos-backoffice/internal/payment/app/services"
	"pos-backoffice/internal/payment/domain/dto"
)

type PaymentHandler struct {
	settlementService *services.SettlementService
	log               zerolog.Logger
}

func NewPaymentHandler(settlementService *services.SettlementService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		settlementService: settlementService,
		log:               log,
	}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Str("action", "parse_failed").Err(err).Msg("failed to parse settle request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: "failed to parse JSON"})
		return
	}

	payment, err := h.settlementService.Settle(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "order_id")
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.settlementService.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.settlementService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
