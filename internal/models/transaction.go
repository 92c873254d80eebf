package models

import "time"

// Transaction is a single charging session at a charge box. Sessions without a
// stop timestamp are still running.
type Transaction struct {
	ID             int        `json:"id"`
	ChargeBoxID    string     `json:"chargeBoxId"`
	ConnectorID    int        `json:"connectorId"`
	OcppIDTag      string     `json:"ocppIdTag"`
	StartTimestamp time.Time  `json:"startTimestamp"`
	StartValue     string     `json:"startValue"`
	StopTimestamp  *time.Time `json:"stopTimestamp,omitempty"`
	StopValue      *string    `json:"stopValue,omitempty"`
}

// MeterValues is one meter sample recorded during a session. The value payload
// is station-defined and passed through unparsed.
type MeterValues struct {
	ValueTimestamp time.Time `json:"valueTimestamp"`
	Value          string    `json:"value"`
	ReadingContext string    `json:"readingContext,omitempty"`
	Format         string    `json:"format,omitempty"`
	Measurand      string    `json:"measurand"`
	Location       string    `json:"location,omitempty"`
	Unit           string    `json:"unit"`
	Phase          string    `json:"phase,omitempty"`
}

// TransactionDetails is a transaction together with its connector status,
// accumulated charging time and full meter-value history.
type TransactionDetails struct {
	Transaction     Transaction   `json:"transaction"`
	ConnectorStatus string        `json:"connectorStatus"`
	ChargingTime    string        `json:"chargingTime"`
	Values          []MeterValues `json:"values"`
}
