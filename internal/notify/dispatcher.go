// Package notify delivers low-toner notifications to the dashboard sockets,
// the recent alerts feed and the alert history.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"printhub/console/internal/models"
)

// Appender forwards notifications to an out-of-process consumer.
type Appender interface {
	Append(ctx context.Context, owner models.Owner, notifications []models.Notification) error
}

type Dispatcher struct {
	hub     *Hub
	feed    *Feed
	stream  Appender
	history History
	log     zerolog.Logger
}

type DispatcherOptions struct {
	Hub  *Hub
	Feed *Feed
	// Stream takes precedence over History; the worker then owns persistence.
	Stream  Appender
	History History
	Log     zerolog.Logger
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		hub:     opts.Hub,
		feed:    opts.Feed,
		stream:  opts.Stream,
		history: opts.History,
		log:     opts.Log,
	}
}

// Publish emits every notification of a refresh pass. Nothing is
// deduplicated: a printer that stays low is reported again each pass.
func (d *Dispatcher) Publish(ctx context.Context, owner models.Owner, notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}

	toasts := make([]Toast, 0, len(notifications))
	for _, n := range notifications {
		toasts = append(toasts, ToastFor(n))
		d.log.Warn().
			Str("user", owner.Username).
			Int("printer_id", n.PrinterID).
			Str("color", n.Color).
			Int("level", n.Level).
			Msg(n.Message())
	}

	if d.feed != nil {
		d.feed.Add(owner.SessionID, toasts)
	}
	if d.hub != nil {
		d.hub.Send(owner.SessionID, toasts)
	}

	switch {
	case d.stream != nil:
		if err := d.stream.Append(ctx, owner, notifications); err != nil {
			d.log.Error().Err(err).Msg("append low toner stream failed")
		}
	case d.history != nil:
		for _, n := range notifications {
			if _, err := d.history.Insert(ctx, models.NewAlert(owner.Username, n)); err != nil {
				d.log.Error().Err(err).Int("printer_id", n.PrinterID).Msg("record alert failed")
			}
		}
	}
}

// Forget drops the live state of a session that ended.
func (d *Dispatcher) Forget(owner models.Owner) {
	if d.hub != nil {
		d.hub.Close(owner.SessionID)
	}
	if d.feed != nil {
		d.feed.Drop(owner.SessionID)
	}
}

func (d *Dispatcher) Hub() *Hub   { return d.hub }
func (d *Dispatcher) Feed() *Feed { return d.feed }
