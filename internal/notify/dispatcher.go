// Package notify dispatches marketing notifications to selected contacts and
// accumulates the per-send outcome ledger.
package notify

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/marketing"
)

// DispatchMode selects the granularity of external send calls.
type DispatchMode string

const (
	// ModePerRecord issues one call per contact record: a phone and an email
	// for the same owner are two independent sends.
	ModePerRecord DispatchMode = "per_record"
	// ModePerOwner issues one call per owner identity, bundling the owner's
	// phone and email into a single payload whose outcome fans out to one
	// ledger row per channel present.
	ModePerOwner DispatchMode = "per_owner"
)

// ParseDispatchMode validates a mode string from config or flags.
func ParseDispatchMode(s string) (DispatchMode, error) {
	switch DispatchMode(s) {
	case ModePerRecord, ModePerOwner:
		return DispatchMode(s), nil
	case "":
		return ModePerRecord, nil
	}
	return "", eris.Errorf("notify: unknown dispatch mode %q", s)
}

// Dispatcher sends notifications through the marketing service.
type Dispatcher struct {
	client  marketing.Client
	mode    DispatchMode
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMode sets the dispatch granularity. Default is per-record.
func WithMode(m DispatchMode) Option {
	return func(d *Dispatcher) {
		d.mode = m
	}
}

// WithRateLimit paces sends at n per second. Zero or negative disables
// pacing.
func WithRateLimit(perSecond float64) Option {
	return func(d *Dispatcher) {
		if perSecond > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithClock overrides the ledger timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a Dispatcher in per-record mode.
func NewDispatcher(client marketing.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: client,
		mode:   ModePerRecord,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends a notification for every contact with SendTo set and
// returns the full outcome ledger. The batch is strictly sequential and runs
// to completion: a failed call is recorded Failed and processing continues
// with the next unit. In per-record mode the ledger has exactly one row per
// qualifying contact.
func (d *Dispatcher) Dispatch(ctx context.Context, contacts []model.ContactRecord) []model.NotificationOutcome {
	selected := make([]model.ContactRecord, 0, len(contacts))
	for _, c := range contacts {
		if c.SendTo {
			selected = append(selected, c)
		}
	}

	if d.mode == ModePerOwner {
		return d.dispatchPerOwner(ctx, selected)
	}
	return d.dispatchPerRecord(ctx, selected)
}

func (d *Dispatcher) dispatchPerRecord(ctx context.Context, contacts []model.ContactRecord) []model.NotificationOutcome {
	ledger := make([]model.NotificationOutcome, 0, len(contacts))

	for _, c := range contacts {
		payload := marketing.Payload{
			Name:    c.Name,
			Address: c.Address,
		}
		switch c.Type {
		case model.ContactTypePhone:
			payload.PhoneNumber = c.Value
		case model.ContactTypeEmail:
			payload.Email = c.Value
		}

		response, status := d.send(ctx, payload)
		ledger = append(ledger, model.NotificationOutcome{
			ID:        c.ID,
			Name:      c.Name,
			Contact:   c.Value,
			Channel:   model.ChannelFor(c.Type),
			Timestamp: model.LedgerTimestamp(d.now()),
			Status:    status,
			Response:  response,
		})
	}

	return ledger
}

func (d *Dispatcher) dispatchPerOwner(ctx context.Context, contacts []model.ContactRecord) []model.NotificationOutcome {
	type bundle struct {
		phone *model.ContactRecord
		email *model.ContactRecord
	}

	order := make([]model.OwnerIdentity, 0, len(contacts))
	byOwner := make(map[model.OwnerIdentity]*bundle, len(contacts))
	for i := range contacts {
		c := contacts[i]
		b, ok := byOwner[c.Owner()]
		if !ok {
			b = &bundle{}
			byOwner[c.Owner()] = b
			order = append(order, c.Owner())
		}
		switch c.Type {
		case model.ContactTypePhone:
			if b.phone == nil {
				b.phone = &contacts[i]
			}
		case model.ContactTypeEmail:
			if b.email == nil {
				b.email = &contacts[i]
			}
		}
	}

	var ledger []model.NotificationOutcome
	for _, owner := range order {
		b := byOwner[owner]

		// An owner whose rows all carry an unrecognized type yields a bundle
		// with neither channel; there is nothing to send for it.
		if b.phone == nil && b.email == nil {
			zap.L().Warn("notify: skipping owner with no dispatchable channel",
				zap.String("id", owner.ID),
				zap.String("name", owner.Name),
			)
			continue
		}

		first := b.phone
		if first == nil {
			first = b.email
		}
		payload := marketing.Payload{
			Name:    first.Name,
			Address: first.Address,
		}
		if b.phone != nil {
			payload.PhoneNumber = b.phone.Value
		}
		if b.email != nil {
			payload.Email = b.email.Value
		}

		response, status := d.send(ctx, payload)
		timestamp := model.LedgerTimestamp(d.now())

		// One ledger row per channel present, both inheriting the single
		// call's outcome.
		for _, rec := range []*model.ContactRecord{b.phone, b.email} {
			if rec == nil {
				continue
			}
			ledger = append(ledger, model.NotificationOutcome{
				ID:        rec.ID,
				Name:      rec.Name,
				Contact:   rec.Value,
				Channel:   model.ChannelFor(rec.Type),
				Timestamp: timestamp,
				Status:    status,
				Response:  response,
			})
		}
	}

	return ledger
}

// send issues one external call and classifies the outcome. Errors are
// recorded, never propagated: the batch must run to completion.
func (d *Dispatcher) send(ctx context.Context, payload marketing.Payload) (string, model.SendStatus) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return err.Error(), model.SendStatusFailed
		}
	}

	response, err := d.client.Send(ctx, payload)
	if err != nil {
		zap.L().Warn("notify: send failed",
			zap.String("name", payload.Name),
			zap.Error(err),
		)
		return err.Error(), model.SendStatusFailed
	}

	return string(response), model.SendStatusSent
}
