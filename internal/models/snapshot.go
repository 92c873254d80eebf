package models

import "time"

// SnapshotReading is the value/unit pair emitted under a canonical measurand key.
type SnapshotReading struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// MeterValuesSnapshot groups the latest reading per canonical key with the
// newest timestamp across the retained readings.
type MeterValuesSnapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Values    map[string]SnapshotReading `json:"values"`
}

// TransactionSnapshot is the response body of the /latest endpoints.
// MeterValues holds either a MeterValuesSnapshot or an empty object when no
// recognized measurand was sampled.
type TransactionSnapshot struct {
	ID              int       `json:"id"`
	ChargeBoxID     string    `json:"chargeBoxId"`
	ConnectorID     int       `json:"connectorId"`
	StartTimestamp  time.Time `json:"startTimestamp"`
	StartValue      string    `json:"startValue"`
	Timestamp       time.Time `json:"timestamp"`
	ConnectorStatus string    `json:"connectorStatus,omitempty"`
	ChargingTime    string    `json:"chargingTime,omitempty"`
	MeterValues     any       `json:"meterValues"`
}
