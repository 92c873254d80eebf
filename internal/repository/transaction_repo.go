package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chargehub/internal/models"
)

// ErrTransactionNotFound indicates an unknown transaction id.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository reads transactions and meter values. This subsystem
// never writes; ingestion happens in the station-facing service.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository returns repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	t.transaction_pk, c.charge_box_id, c.connector_id, t.id_tag,
	t.start_timestamp, t.start_value, t.stop_timestamp, t.stop_value`

// GetTransactions returns transactions matching the validated form, most
// recent first. Ties on start_timestamp break by transaction_pk descending.
func (r *TransactionRepository) GetTransactions(ctx context.Context, form models.TransactionQueryForm) ([]models.Transaction, error) {
	var (
		conds []string
		args  []any
	)

	if form.ChargeBoxID != "" {
		args = append(args, form.ChargeBoxID)
		conds = append(conds, fmt.Sprintf("c.charge_box_id = $%d", len(args)))
	}
	if form.OcppIDTag != "" {
		args = append(args, form.OcppIDTag)
		conds = append(conds, fmt.Sprintf("t.id_tag = $%d", len(args)))
	}
	if form.TransactionPK != nil {
		args = append(args, *form.TransactionPK)
		conds = append(conds, fmt.Sprintf("t.transaction_pk = $%d", len(args)))
	}

	switch form.Type {
	case models.TransactionTypeActive:
		conds = append(conds, "t.stop_timestamp IS NULL")
	case models.TransactionTypeStopped:
		conds = append(conds, "t.stop_timestamp IS NOT NULL")
	}

	from, to := form.PeriodWindow(time.Now().UTC())
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("t.start_timestamp >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("t.start_timestamp <= $%d", len(args)))
	}

	query := `
		SELECT` + transactionColumns + `
		FROM transactions t
		JOIN connectors c ON c.connector_pk = t.connector_pk`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY t.start_timestamp DESC, t.transaction_pk DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetTransaction returns one transaction by primary key together with the
// connector_pk needed for the status lookup.
func (r *TransactionRepository) GetTransaction(ctx context.Context, transactionID int) (models.Transaction, int64, error) {
	const query = `
		SELECT` + transactionColumns + `, t.connector_pk
		FROM transactions t
		JOIN connectors c ON c.connector_pk = t.connector_pk
		WHERE t.transaction_pk = $1`

	var (
		tx            models.Transaction
		idTag         sql.NullString
		stopTimestamp sql.NullTime
		stopValue     sql.NullString
		connectorPK   int64
	)
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&tx.ID,
		&tx.ChargeBoxID,
		&tx.ConnectorID,
		&idTag,
		&tx.StartTimestamp,
		&tx.StartValue,
		&stopTimestamp,
		&stopValue,
		&connectorPK,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, 0, ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, 0, fmt.Errorf("query transaction %d: %w", transactionID, err)
	}

	tx.OcppIDTag = idTag.String
	if stopTimestamp.Valid {
		ts := stopTimestamp.Time
		tx.StopTimestamp = &ts
	}
	if stopValue.Valid {
		v := stopValue.String
		tx.StopValue = &v
	}
	return tx, connectorPK, nil
}

// GetMeterValues returns all meter samples recorded for a transaction in
// store order.
func (r *TransactionRepository) GetMeterValues(ctx context.Context, transactionID int) ([]models.MeterValues, error) {
	const query = `
		SELECT value_timestamp, value, reading_context, format, measurand, location, unit, phase
		FROM connector_meter_values
		WHERE transaction_pk = $1
		ORDER BY value_timestamp`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query meter values for transaction %d: %w", transactionID, err)
	}
	defer rows.Close()

	var values []models.MeterValues
	for rows.Next() {
		var mv models.MeterValues
		var readingContext, format, location, phase sql.NullString
		if err := rows.Scan(
			&mv.ValueTimestamp,
			&mv.Value,
			&readingContext,
			&format,
			&mv.Measurand,
			&location,
			&mv.Unit,
			&phase,
		); err != nil {
			return nil, err
		}
		mv.ReadingContext = readingContext.String
		mv.Format = format.String
		mv.Location = location.String
		mv.Phase = phase.String
		values = append(values, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// GetConnectorStatus returns the last recorded status for a connector, or ""
// when no status notification has been stored yet.
func (r *TransactionRepository) GetConnectorStatus(ctx context.Context, connectorPK int64) (string, error) {
	const query = `
		SELECT status
		FROM connector_status
		WHERE connector_pk = $1
		ORDER BY status_timestamp DESC
		LIMIT 1`

	var status string
	err := r.db.QueryRowContext(ctx, query, connectorPK).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query connector status: %w", err)
	}
	return status, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		tx            models.Transaction
		idTag         sql.NullString
		stopTimestamp sql.NullTime
		stopValue     sql.NullString
	)
	if err := row.Scan(
		&tx.ID,
		&tx.ChargeBoxID,
		&tx.ConnectorID,
		&idTag,
		&tx.StartTimestamp,
		&tx.StartValue,
		&stopTimestamp,
		&stopValue,
	); err != nil {
		return models.Transaction{}, err
	}
	tx.OcppIDTag = idTag.String
	if stopTimestamp.Valid {
		ts := stopTimestamp.Time
		tx.StopTimestamp = &ts
	}
	if stopValue.Valid {
		v := stopValue.String
		tx.StopValue = &v
	}
	return tx, nil
}
