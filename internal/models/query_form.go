package models

import (
	"errors"
	"time"
)

// TransactionType filters sessions by lifecycle state.
type TransactionType string

const (
	TransactionTypeActive  TransactionType = "ACTIVE"
	TransactionTypeStopped TransactionType = "STOPPED"
	TransactionTypeAll     TransactionType = "ALL"
)

// Valid reports whether the type is one of the recognized values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeActive, TransactionTypeStopped, TransactionTypeAll:
		return true
	}
	return false
}

// QueryPeriodType selects the window applied against startTimestamp.
type QueryPeriodType string

const (
	QueryPeriodFromTo QueryPeriodType = "FROM_TO"
	QueryPeriodToday  QueryPeriodType = "TODAY"
	QueryPeriodLast7  QueryPeriodType = "LAST_7"
	QueryPeriodLast30 QueryPeriodType = "LAST_30"
	QueryPeriodAll    QueryPeriodType = "ALL"
)

// Valid reports whether the period type is one of the recognized values.
func (p QueryPeriodType) Valid() bool {
	switch p {
	case QueryPeriodFromTo, QueryPeriodToday, QueryPeriodLast7, QueryPeriodLast30, QueryPeriodAll:
		return true
	}
	return false
}

// TransactionQueryForm carries the filter parameters of the transaction list
// endpoint. Zero values mean "no filter".
type TransactionQueryForm struct {
	ChargeBoxID   string
	OcppIDTag     string
	TransactionPK *int
	Type          TransactionType
	PeriodType    QueryPeriodType
	From          *time.Time
	To            *time.Time
	ReturnCSV     bool
}

// Validate checks enum membership and the FROM_TO requirements.
func (f *TransactionQueryForm) Validate() error {
	if f.Type == "" {
		f.Type = TransactionTypeAll
	}
	if !f.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if f.PeriodType == "" {
		f.PeriodType = QueryPeriodAll
	}
	if !f.PeriodType.Valid() {
		return errors.New("invalid period type")
	}
	if f.PeriodType == QueryPeriodFromTo {
		if f.From == nil || f.To == nil {
			return errors.New("from and to are required when periodType=FROM_TO")
		}
		if f.From.After(*f.To) {
			return errors.New("from must not be after to")
		}
	}
	return nil
}

// PeriodWindow resolves the period filter into an inclusive [from, to] window
// against startTimestamp. Nil bounds mean unbounded.
func (f *TransactionQueryForm) PeriodWindow(now time.Time) (from, to *time.Time) {
	switch f.PeriodType {
	case QueryPeriodFromTo:
		return f.From, f.To
	case QueryPeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &start, &now
	case QueryPeriodLast7:
		start := now.AddDate(0, 0, -7)
		return &start, &now
	case QueryPeriodLast30:
		start := now.AddDate(0, 0, -30)
		return &start, &now
	default:
		return nil, nil
	}
}
