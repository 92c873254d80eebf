package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/repository"
	"chargehub/internal/service"
)

// TransactionStore is the read surface the handlers depend on.
type TransactionStore interface {
	GetTransactions(ctx context.Context, form models.TransactionQueryForm) ([]models.Transaction, error)
	GetDetails(ctx context.Context, transactionID int) (*models.TransactionDetails, error)
	GetLatestDetails(ctx context.Context, transactionID int) (*models.TransactionSnapshot, error)
	GetLatestForChargeBox(ctx context.Context, chargeBoxID string) (*models.TransactionSnapshot, error)
}

// TransactionsHandler serves the /api/v1/transactions endpoints.
type TransactionsHandler struct {
	store  TransactionStore
	logger *zap.Logger
}

// NewTransactionsHandler returns handler.
func NewTransactionsHandler(store TransactionStore, logger *zap.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, logger: logger}
}

// List handles GET /api/v1/transactions. The request body is ignored; query
// parameters bind to the filter form.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	form, err := parseQueryForm(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if form.ReturnCSV {
		writeError(w, r, http.StatusBadRequest, "returnCSV=true is not supported for API calls")
		return
	}

	transactions, err := h.store.GetTransactions(r.Context(), form)
	if err != nil {
		h.logger.Error("failed to query transactions", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to query transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// Details handles GET /api/v1/transactions/{transactionId}.
func (h *TransactionsHandler) Details(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	details, err := h.store.GetDetails(r.Context(), transactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("transaction %d not found", transactionID))
		return
	}
	if err != nil {
		h.logger.Error("failed to load transaction details",
			zap.Int("transaction_id", transactionID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load transaction details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Latest handles GET /api/v1/transactions/{transactionId}/latest.
func (h *TransactionsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.store.GetLatestDetails(r.Context(), transactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("transaction %d not found", transactionID))
		return
	}
	if err != nil {
		h.logger.Error("failed to build transaction snapshot",
			zap.Int("transaction_id", transactionID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to build transaction snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// LatestForCharger handles GET /api/v1/transactions/charger/{chargeBoxId}/latest.
func (h *TransactionsHandler) LatestForCharger(w http.ResponseWriter, r *http.Request) {
	chargeBoxID := chi.URLParam(r, "chargeBoxId")

	snapshot, err := h.store.GetLatestForChargeBox(r.Context(), chargeBoxID)
	if errors.Is(err, service.ErrNoTransactions) {
		writeError(w, r, http.StatusBadRequest, "No transactions found for charger: "+chargeBoxID)
		return
	}
	if err != nil {
		h.logger.Error("failed to build charger snapshot",
			zap.String("charge_box_id", chargeBoxID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to build charger snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *TransactionsHandler) transactionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "transactionId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "transaction id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseQueryForm(q url.Values) (models.TransactionQueryForm, error) {
	form := models.TransactionQueryForm{
		ChargeBoxID: q.Get("chargeBoxId"),
		OcppIDTag:   q.Get("ocppIdTag"),
		Type:        models.TransactionType(q.Get("type")),
		PeriodType:  models.QueryPeriodType(q.Get("periodType")),
	}

	if raw := q.Get("transactionPk"); raw != "" {
		pk, err := strconv.Atoi(raw)
		if err != nil {
			return form, errors.New("transactionPk must be an integer")
		}
		form.TransactionPK = &pk
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return form, errors.New("from must be an ISO-8601 timestamp")
		}
		form.From = &ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return form, errors.New("to must be an ISO-8601 timestamp")
		}
		form.To = &ts
	}
	if raw := q.Get("returnCSV"); raw != "" {
		csv, err := strconv.ParseBool(raw)
		if err != nil {
			return form, errors.New("returnCSV must be a boolean")
		}
		form.ReturnCSV = csv
	}

	if err := form.Validate(); err != nil {
		return form, err
	}
	return form, nil
}
