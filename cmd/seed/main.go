// Seed creates a demo charge box with one transaction and a handful of meter
// samples, for exercising the query endpoints locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"chargehub/internal/config"
	"chargehub/internal/db"
)

func main() {
	chargeBoxID := flag.String("chargebox", "CB-0001", "charge box id")
	connectorID := flag.Int("connector", 1, "connector number")
	idTag := flag.String("idtag", "TAG-DEMO", "ocpp id tag")
	samples := flag.Int("samples", 6, "meter samples to insert")
	stopped := flag.Bool("stopped", false, "close the session")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = pool.ExecContext(ctx, `
		INSERT INTO charge_boxes (charge_box_id) VALUES ($1)
		ON CONFLICT (charge_box_id) DO NOTHING`, *chargeBoxID)
	if err != nil {
		log.Fatal(err)
	}

	var connectorPK int64
	err = pool.QueryRowContext(ctx, `
		INSERT INTO connectors (charge_box_id, connector_id) VALUES ($1, $2)
		ON CONFLICT (charge_box_id, connector_id) DO UPDATE SET connector_id = EXCLUDED.connector_id
		RETURNING connector_pk`, *chargeBoxID, *connectorID).Scan(&connectorPK)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now().UTC().Add(-time.Hour)
	_, err = pool.ExecContext(ctx, `
		INSERT INTO connector_status (connector_pk, status, status_timestamp)
		VALUES ($1, 'Charging', $2)`, connectorPK, start)
	if err != nil {
		log.Fatal(err)
	}

	var transactionPK int
	err = pool.QueryRowContext(ctx, `
		INSERT INTO transactions (connector_pk, id_tag, start_timestamp, start_value)
		VALUES ($1, $2, $3, '0')
		RETURNING transaction_pk`, connectorPK, *idTag, start).Scan(&transactionPK)
	if err != nil {
		log.Fatal(err)
	}

	measurands := []struct{ measurand, unit string }{
		{"Energy.Active.Import.Register", "Wh"},
		{"Power.Active.Import", "W"},
		{"Current.Import", "A"},
		{"Voltage", "V"},
		{"Temperature", "Celsius"},
		{"SoC", "Percent"},
	}
	for i := 0; i < *samples; i++ {
		m := measurands[i%len(measurands)]
		_, err = pool.ExecContext(ctx, `
			INSERT INTO connector_meter_values
				(connector_pk, transaction_pk, value_timestamp, value, reading_context, measurand, unit)
			VALUES ($1, $2, $3, $4, 'Sample.Periodic', $5, $6)`,
			connectorPK, transactionPK,
			start.Add(time.Duration(i)*5*time.Minute),
			fmt.Sprintf("%d", 100*(i+1)),
			m.measurand, m.unit)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *stopped {
		_, err = pool.ExecContext(ctx, `
			UPDATE transactions SET stop_timestamp = $2, stop_value = '4500'
			WHERE transaction_pk = $1`, transactionPK, time.Now().UTC())
		if err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("Seeded transaction:", transactionPK, "charge box:", *chargeBoxID)
}
