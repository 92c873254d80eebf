package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chargehub/internal/meter"
	"chargehub/internal/models"
	"chargehub/internal/repository"
)

// ErrNoTransactions indicates that a charge box has no recorded transactions.
var ErrNoTransactions = errors.New("no transactions for charge box")

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Repository provides read access to transactions and meter values.
type Repository interface {
	GetTransactions(ctx context.Context, form models.TransactionQueryForm) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, transactionID int) (models.Transaction, int64, error)
	GetMeterValues(ctx context.Context, transactionID int) ([]models.MeterValues, error)
	GetConnectorStatus(ctx context.Context, connectorPK int64) (string, error)
}

// StatusStore exposes live connector statuses published by the station-facing
// subsystem. A miss returns "".
type StatusStore interface {
	Get(ctx context.Context, chargeBoxID string, connectorID int) (string, error)
}

// TransactionsService composes the store with the live status override and
// derives the response shapes of the query endpoints.
type TransactionsService struct {
	repo        Repository
	statusStore StatusStore
	logger      *zap.Logger
}

// NewTransactionsService builds service. statusStore may be nil, in which case
// connector statuses come from the database only.
func NewTransactionsService(repo Repository, statusStore StatusStore, logger *zap.Logger) *TransactionsService {
	return &TransactionsService{
		repo:        repo,
		statusStore: statusStore,
		logger:      logger,
	}
}

// GetTransactions returns transactions matching the form, most recent first.
func (s *TransactionsService) GetTransactions(ctx context.Context, form models.TransactionQueryForm) ([]models.Transaction, error) {
	return s.repo.GetTransactions(ctx, form)
}

// GetDetails returns a transaction with its connector status, charging time
// and full meter-value history.
func (s *TransactionsService) GetDetails(ctx context.Context, transactionID int) (*models.TransactionDetails, error) {
	tx, connectorPK, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	values, err := s.repo.GetMeterValues(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	return &models.TransactionDetails{
		Transaction:     tx,
		ConnectorStatus: s.connectorStatus(ctx, tx, connectorPK),
		ChargingTime:    formatChargingTime(tx.StartTimestamp, tx.StopTimestamp, nowFunc().UTC()),
		Values:          values,
	}, nil
}

// GetLatestDetails condenses a transaction's meter-value history into one
// reading per canonical measurand key.
func (s *TransactionsService) GetLatestDetails(ctx context.Context, transactionID int) (*models.TransactionSnapshot, error) {
	details, err := s.GetDetails(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	snap := headerSnapshot(details.Transaction)
	snap.ConnectorStatus = details.ConnectorStatus
	snap.ChargingTime = details.ChargingTime
	snap.MeterValues = reduceMeterValues(details.Values)
	return snap, nil
}

// GetLatestForChargeBox returns the snapshot of the most recent transaction of
// a charge box. ErrNoTransactions means the charge box has no sessions at all.
// A transaction that disappears between the list and the details lookup still
// yields the header fields with an empty meter-value set.
func (s *TransactionsService) GetLatestForChargeBox(ctx context.Context, chargeBoxID string) (*models.TransactionSnapshot, error) {
	form := models.TransactionQueryForm{
		ChargeBoxID: chargeBoxID,
		Type:        models.TransactionTypeAll,
		PeriodType:  models.QueryPeriodAll,
		ReturnCSV:   false,
	}
	transactions, err := s.repo.GetTransactions(ctx, form)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}

	latest := transactions[0]
	snap, err := s.GetLatestDetails(ctx, latest.ID)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, repository.ErrTransactionNotFound) {
		s.logger.Warn("details vanished for latest transaction",
			zap.String("charge_box_id", chargeBoxID),
			zap.Int("transaction_id", latest.ID))
		return headerSnapshot(latest), nil
	}
	return nil, err
}

func (s *TransactionsService) connectorStatus(ctx context.Context, tx models.Transaction, connectorPK int64) string {
	if s.statusStore != nil {
		status, err := s.statusStore.Get(ctx, tx.ChargeBoxID, tx.ConnectorID)
		if err != nil {
			s.logger.Warn("status store unavailable, falling back to db",
				zap.String("charge_box_id", tx.ChargeBoxID), zap.Error(err))
		} else if status != "" {
			return status
		}
	}

	status, err := s.repo.GetConnectorStatus(ctx, connectorPK)
	if err != nil {
		s.logger.Warn("failed to read connector status", zap.Error(err))
		return ""
	}
	return status
}

func headerSnapshot(tx models.Transaction) *models.TransactionSnapshot {
	return &models.TransactionSnapshot{
		ID:             tx.ID,
		ChargeBoxID:    tx.ChargeBoxID,
		ConnectorID:    tx.ConnectorID,
		StartTimestamp: tx.StartTimestamp,
		StartValue:     tx.StartValue,
		Timestamp:      nowFunc().UTC(),
		MeterValues:    struct{}{},
	}
}

// reduceMeterValues maps the reducer output to the wire shape: an empty object
// when nothing was retained, otherwise {timestamp, values}.
func reduceMeterValues(values []models.MeterValues) any {
	snap, ok := meter.Latest(values)
	if !ok {
		return struct{}{}
	}
	readings := make(map[string]models.SnapshotReading, len(snap.Values))
	for key, mv := range snap.Values {
		readings[key] = models.SnapshotReading{Value: mv.Value, Unit: mv.Unit}
	}
	return models.MeterValuesSnapshot{Timestamp: snap.Timestamp, Values: readings}
}

// formatChargingTime humanizes the session duration. Open sessions measure
// start to now.
func formatChargingTime(start time.Time, stop *time.Time, now time.Time) string {
	end := now
	if stop != nil {
		end = *stop
	}
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
