package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dabini-lab/line-bot/internal/bus"
	"github.com/dabini-lab/line-bot/internal/domain"
	"github.com/dabini-lab/line-bot/internal/identity"
	"github.com/dabini-lab/line-bot/internal/mention"
	"github.com/dabini-lab/line-bot/internal/reply"
)

// Status is the outcome of one event's pipeline run.
type Status string

const (
	StatusSkipped Status = "skipped" // non-text or non-message event
	StatusIgnored Status = "ignored" // text message not addressed to the bot
	StatusSilent  Status = "silent"  // addressed, but the engine returned no messages
	StatusReplied Status = "replied"
	StatusFailed  Status = "failed"
)

// Result is reported per event in the webhook response body. Failure
// detail stays in the logs; the platform only needs the status.
type Result struct {
	Status Status `json:"status"`
}

// Dispatcher runs the relay pipeline for each event of a delivery.
// Events are independent: they run concurrently and one event's failure
// never blocks its siblings (deliberate deviation from the original
// all-or-nothing 500).
type Dispatcher struct {
	resolver   *mention.Resolver
	identity   *identity.Lookup
	engine     domain.Engine
	sender     domain.ReplySender
	scope      Scope
	channelID  string
	maxReplies int
	bus        *bus.Bus
	logger     *slog.Logger
}

type DispatcherConfig struct {
	Resolver   *mention.Resolver
	Identity   *identity.Lookup
	Engine     domain.Engine
	Sender     domain.ReplySender
	Scope      Scope
	ChannelID  string
	MaxReplies int
	Bus        *bus.Bus
	Logger     *slog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Scope == "" {
		cfg.Scope = ScopeChannel
	}
	return &Dispatcher{
		resolver:   cfg.Resolver,
		identity:   cfg.Identity,
		engine:     cfg.Engine,
		sender:     cfg.Sender,
		scope:      cfg.Scope,
		channelID:  cfg.ChannelID,
		maxReplies: cfg.MaxReplies,
		bus:        cfg.Bus,
		logger:     cfg.Logger,
	}
}

// HandleDelivery fans out one pipeline run per event and joins the
// results. Result order matches event order; completion order does not.
func (d *Dispatcher) HandleDelivery(ctx context.Context, events []domain.InboundEvent) []Result {
	deliveryID := uuid.NewString()
	d.bus.Emit(bus.Event{
		Type:       bus.EventDeliveryReceived,
		DeliveryID: deliveryID,
		Payload:    map[string]any{"events": len(events)},
	})
	d.logger.Info("delivery received", "delivery_id", deliveryID, "events", len(events))

	results := make([]Result, len(events))
	var wg sync.WaitGroup
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev domain.InboundEvent) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("pipeline panic", "delivery_id", deliveryID, "panic", r)
					d.bus.Emit(bus.Event{Type: bus.EventEventFailed, DeliveryID: deliveryID})
					results[i] = Result{Status: StatusFailed}
				}
			}()
			results[i] = d.handleEvent(ctx, deliveryID, ev)
		}(i, ev)
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) handleEvent(ctx context.Context, deliveryID string, ev domain.InboundEvent) Result {
	if !ev.IsText() {
		d.bus.Emit(bus.Event{Type: bus.EventEventSkipped, DeliveryID: deliveryID})
		return Result{Status: StatusSkipped}
	}

	signal := d.resolver.Decide(ev.Message, ev.Source)
	if signal == mention.SignalNone {
		d.bus.Emit(bus.Event{Type: bus.EventEventIgnored, DeliveryID: deliveryID})
		return Result{Status: StatusIgnored}
	}
	d.logger.Info("message addressed to bot",
		"delivery_id", deliveryID,
		"signal", string(signal),
		"source", string(ev.Source.Kind),
	)

	// Identity must settle before the engine request is built; the
	// speaker name is part of it.
	speaker := d.identity.Resolve(ctx, ev.Source.UserID)
	key := ConversationKey(d.scope, d.channelID, ev.Source.UserID)

	start := time.Now()
	replies, err := d.engine.Forward(ctx, ev.Message.Text, key, speaker)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		d.logger.Error("engine call failed", "delivery_id", deliveryID, "err", err)
		d.bus.Emit(bus.Event{
			Type:       bus.EventEngineError,
			DeliveryID: deliveryID,
			Payload:    map[string]any{"engine_seconds": elapsed},
		})
		d.bus.Emit(bus.Event{Type: bus.EventEventFailed, DeliveryID: deliveryID})
		return Result{Status: StatusFailed}
	}

	batch := reply.Shape(replies, d.maxReplies)
	if len(batch) == 0 {
		// The reply API requires at least one message.
		d.bus.Emit(bus.Event{Type: bus.EventEventSilent, DeliveryID: deliveryID})
		return Result{Status: StatusSilent}
	}

	if err := d.sender.Reply(ctx, ev.ReplyToken, batch); err != nil {
		d.logger.Error("reply send failed", "delivery_id", deliveryID, "err", err)
		d.bus.Emit(bus.Event{Type: bus.EventEventFailed, DeliveryID: deliveryID})
		return Result{Status: StatusFailed}
	}

	d.bus.Emit(bus.Event{
		Type:       bus.EventEventReplied,
		DeliveryID: deliveryID,
		Payload:    map[string]any{"messages": len(batch), "engine_seconds": elapsed},
	})
	return Result{Status: StatusReplied}
}
