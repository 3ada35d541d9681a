package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"printhub/console/internal/models"
)

const alertSchema = `
	CREATE TABLE IF NOT EXISTS toner_alerts (
		id          BIGSERIAL PRIMARY KEY,
		username    TEXT NOT NULL,
		printer_id  INTEGER NOT NULL,
		printer_ip  TEXT NOT NULL,
		label       TEXT NOT NULL,
		color       TEXT NOT NULL,
		level       INTEGER NOT NULL,
		message     TEXT NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS toner_alerts_user_detected_idx
		ON toner_alerts (username, detected_at DESC);
`

// AlertRepository is the Postgres alert history.
type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, alertSchema); err != nil {
		return fmt.Errorf("create toner_alerts: %w", err)
	}
	return nil
}

func (r *AlertRepository) Insert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	const query = `
		INSERT INTO toner_alerts (
			username, printer_id, printer_ip, label, color, level, message, detected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, created_at
	`

	row := r.pool.QueryRow(ctx, query,
		alert.Username,
		alert.PrinterID,
		alert.PrinterIP,
		alert.Label,
		alert.Color,
		alert.Level,
		alert.Message,
		alert.DetectedAt,
	)
	if err := row.Scan(&alert.ID, &alert.CreatedAt); err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, username string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, username, printer_id, printer_ip, label, color, level, message, detected_at, created_at
		FROM toner_alerts
		WHERE username = $1
		ORDER BY detected_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(
			&a.ID,
			&a.Username,
			&a.PrinterID,
			&a.PrinterIP,
			&a.Label,
			&a.Color,
			&a.Level,
			&a.Message,
			&a.DetectedAt,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *AlertRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM toner_alerts WHERE detected_at < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
