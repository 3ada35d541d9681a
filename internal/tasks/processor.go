// Package tasks handles the entries of the low-toner stream.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"printhub/console/internal/models"
	"printhub/console/internal/notify"
)

type TaskPayload struct {
	Type         string `json:"type"`
	Username     string `json:"username"`
	Notification string `json:"notification"`
}

type Processor struct {
	history notify.History
	logger  zerolog.Logger
}

func NewProcessor(history notify.History, logger zerolog.Logger) *Processor {
	return &Processor{history: history, logger: logger}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case notify.TypeLowToner:
		return p.handleLowToner(ctx, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleLowToner(ctx context.Context, payload TaskPayload) error {
	var n models.Notification
	if err := json.Unmarshal([]byte(payload.Notification), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	alert, err := p.history.Insert(ctx, models.NewAlert(payload.Username, n))
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	p.logger.Info().
		Int64("alert_id", alert.ID).
		Str("user", alert.Username).
		Int("printer_id", alert.PrinterID).
		Str("color", alert.Color).
		Int("level", alert.Level).
		Msg("alert recorded")
	return nil
}
