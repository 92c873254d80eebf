package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	httpserver "chargehub/internal/http"
	"chargehub/internal/http/handlers"
	"chargehub/internal/models"
	"chargehub/internal/repository"
	"chargehub/internal/service"
)

type fakeStore struct {
	transactions []models.Transaction
	details      map[int]*models.TransactionDetails
	snapshots    map[int]*models.TransactionSnapshot
	byCharger    map[string]*models.TransactionSnapshot
	lastForm     models.TransactionQueryForm
	listErr      error
}

func (f *fakeStore) GetTransactions(ctx context.Context, form models.TransactionQueryForm) ([]models.Transaction, error) {
	f.lastForm = form
	return f.transactions, f.listErr
}

func (f *fakeStore) GetDetails(ctx context.Context, transactionID int) (*models.TransactionDetails, error) {
	if d, ok := f.details[transactionID]; ok {
		return d, nil
	}
	return nil, repository.ErrTransactionNotFound
}

func (f *fakeStore) GetLatestDetails(ctx context.Context, transactionID int) (*models.TransactionSnapshot, error) {
	if s, ok := f.snapshots[transactionID]; ok {
		return s, nil
	}
	return nil, repository.ErrTransactionNotFound
}

func (f *fakeStore) GetLatestForChargeBox(ctx context.Context, chargeBoxID string) (*models.TransactionSnapshot, error) {
	if s, ok := f.byCharger[chargeBoxID]; ok {
		return s, nil
	}
	return nil, service.ErrNoTransactions
}

func serve(t *testing.T, store *fakeStore, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := httpserver.NewRouter(
		handlers.NewTransactionsHandler(store, zap.NewNop()),
		handlers.NewHealthHandler(),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v: %s", err, rec.Body.String())
	}
	return envelope
}

func TestListReturnsJSONArray(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		transactions: []models.Transaction{
			{ID: 2, ChargeBoxID: "CB-1", ConnectorID: 1, StartTimestamp: now},
			{ID: 1, ChargeBoxID: "CB-1", ConnectorID: 1, StartTimestamp: now.Add(-time.Hour)},
		},
	}

	rec := serve(t, store, http.MethodGet, "/api/v1/transactions?chargeBoxId=CB-1&type=ACTIVE")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got []models.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("store ordering not preserved: %+v", got)
	}
	if store.lastForm.ChargeBoxID != "CB-1" || store.lastForm.Type != models.TransactionTypeActive {
		t.Fatalf("form not bound from query: %+v", store.lastForm)
	}
}

func TestListEmptyResultIsEmptyArray(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("body = %s, want []", body)
	}
}

func TestListRejectsReturnCSV(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions?returnCSV=true")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "returnCSV=true is not supported for API calls" {
		t.Fatalf("message = %v", envelope["message"])
	}
}

func TestListRejectsInvalidForm(t *testing.T) {
	targets := []string{
		"/api/v1/transactions?type=RUNNING",
		"/api/v1/transactions?periodType=FROM_TO",
		"/api/v1/transactions?from=notatime",
		"/api/v1/transactions?transactionPk=abc",
	}
	for _, target := range targets {
		rec := serve(t, &fakeStore{}, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestDetailsUnknownTransaction(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions/99999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	for _, field := range []string{"timestamp", "status", "error", "message", "path"} {
		if _, ok := envelope[field]; !ok {
			t.Fatalf("error envelope missing %q: %v", field, envelope)
		}
	}
	if envelope["status"] != float64(http.StatusNotFound) {
		t.Fatalf("envelope status = %v", envelope["status"])
	}
	if envelope["path"] != "/api/v1/transactions/99999" {
		t.Fatalf("envelope path = %v", envelope["path"])
	}
}

func TestDetailsRejectsNonInteger(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	rec = serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions/-5")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative id: status = %d, want 400", rec.Code)
	}
}

func TestDetailsReturnsFullHistory(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		details: map[int]*models.TransactionDetails{
			42: {
				Transaction: models.Transaction{
					ID: 42, ChargeBoxID: "CB-1", ConnectorID: 1,
					StartTimestamp: start, StartValue: "0",
				},
				ConnectorStatus: "Charging",
				ChargingTime:    "1 hour",
				Values: []models.MeterValues{
					{ValueTimestamp: start.Add(time.Minute), Measurand: "Voltage", Value: "230", Unit: "V"},
				},
			},
		},
	}

	rec := serve(t, store, http.MethodGet, "/api/v1/transactions/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var details models.TransactionDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if details.Transaction.ID != 42 || details.ConnectorStatus != "Charging" || len(details.Values) != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestLatestSnapshotShape(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		snapshots: map[int]*models.TransactionSnapshot{
			42: {
				ID: 42, ChargeBoxID: "CB-1", ConnectorID: 1,
				StartTimestamp: start, StartValue: "0",
				Timestamp:       start.Add(time.Hour),
				ConnectorStatus: "Charging",
				ChargingTime:    "1 hour",
				MeterValues: models.MeterValuesSnapshot{
					Timestamp: start.Add(30 * time.Minute),
					Values: map[string]models.SnapshotReading{
						"energy.active.import.register": {Value: "250", Unit: "Wh"},
					},
				},
			},
		},
	}

	rec := serve(t, store, http.MethodGet, "/api/v1/transactions/42/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, field := range []string{"id", "chargeBoxId", "connectorId", "startTimestamp", "startValue", "timestamp", "connectorStatus", "chargingTime", "meterValues"} {
		if _, ok := body[field]; !ok {
			t.Fatalf("snapshot missing %q: %v", field, body)
		}
	}
	mvs, ok := body["meterValues"].(map[string]any)
	if !ok {
		t.Fatalf("meterValues = %v", body["meterValues"])
	}
	values, ok := mvs["values"].(map[string]any)
	if !ok {
		t.Fatalf("meterValues.values = %v", mvs["values"])
	}
	if _, ok := values["energy.active.import.register"]; !ok {
		t.Fatalf("canonical key missing: %v", values)
	}
}

func TestLatestSnapshotEmptyMeterValues(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		snapshots: map[int]*models.TransactionSnapshot{
			42: {
				ID: 42, ChargeBoxID: "CB-1", ConnectorID: 1,
				StartTimestamp: start, StartValue: "0",
				Timestamp:       start.Add(time.Hour),
				ConnectorStatus: "Charging",
				ChargingTime:    "1 hour",
				MeterValues:     struct{}{},
			},
		},
	}

	rec := serve(t, store, http.MethodGet, "/api/v1/transactions/42/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	mvs, ok := body["meterValues"].(map[string]any)
	if !ok || len(mvs) != 0 {
		t.Fatalf("meterValues = %v, want {}", body["meterValues"])
	}
}

func TestLatestUnknownTransaction(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions/99999/latest")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestChargerLatestNoTransactions(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/api/v1/transactions/charger/UNKNOWN/latest")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "No transactions found for charger: UNKNOWN" {
		t.Fatalf("message = %v", envelope["message"])
	}
}

func TestChargerLatestHappyPath(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		byCharger: map[string]*models.TransactionSnapshot{
			"CB-1": {
				ID: 7, ChargeBoxID: "CB-1", ConnectorID: 2,
				StartTimestamp: start, StartValue: "0",
				Timestamp:   start.Add(time.Hour),
				MeterValues: struct{}{},
			},
		},
	}

	rec := serve(t, store, http.MethodGet, "/api/v1/transactions/charger/CB-1/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["chargeBoxId"] != "CB-1" || body["id"] != float64(7) {
		t.Fatalf("unexpected body: %v", body)
	}
	// Details were absent: status fields omitted, meterValues stays empty.
	if _, present := body["connectorStatus"]; present {
		t.Fatalf("connectorStatus should be omitted: %v", body)
	}
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeStore{}, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
