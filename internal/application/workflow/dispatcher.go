package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Action is a side-effecting automation bound to one event name.
// Registering a new automation means implementing Action and adding it
// to the dispatcher; the dispatch logic itself never changes.
type Action interface {
	// EventName returns the event this action reacts to
	EventName() string
	// Execute runs the automation for one event occurrence
	Execute(ctx context.Context, tenantID uuid.UUID, payload map[string]any) error
}

// Dispatcher routes named business events to registered actions.
// Failures are isolated per action: one action failing or panicking
// never affects the others or the caller. Unknown event names are
// logged and ignored so that new producers can ship before consumers.
type Dispatcher struct {
	mu      sync.RWMutex
	actions map[string][]Action
	logger  *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		actions: make(map[string][]Action),
		logger:  logger,
	}
}

// Register binds an action to its event name
func (d *Dispatcher) Register(action Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions[action.EventName()] = append(d.actions[action.EventName()], action)
}

// Trigger runs every action registered for the event name. Errors are
// logged per action and swallowed.
func (d *Dispatcher) Trigger(ctx context.Context, tenantID uuid.UUID, eventName string, payload map[string]any) {
	d.mu.RLock()
	actions := d.actions[eventName]
	d.mu.RUnlock()

	if len(actions) == 0 {
		d.logger.Info("no automation registered for event",
			zap.String("event", eventName),
		)
		return
	}

	for _, action := range actions {
		if err := d.run(ctx, action, tenantID, payload); err != nil {
			d.logger.Error("workflow action failed",
				zap.String("event", eventName),
				zap.Error(err),
			)
		}
	}
}

// run executes one action, converting panics into errors
func (d *Dispatcher) run(ctx context.Context, action Action, tenantID uuid.UUID, payload map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = shared.NewDomainError("ACTION_PANIC", "Workflow action panicked")
			d.logger.Error("workflow action panicked",
				zap.String("event", action.EventName()),
				zap.Any("panic", r),
			)
		}
	}()
	return action.Execute(ctx, tenantID, payload)
}

// EventBridge forwards domain events from the event bus into the
// dispatcher, so automations run on events raised anywhere in the
// system.
type EventBridge struct {
	dispatcher *Dispatcher
}

// NewEventBridge creates a bridge from the event bus to the dispatcher
func NewEventBridge(dispatcher *Dispatcher) *EventBridge {
	return &EventBridge{dispatcher: dispatcher}
}

// Handle forwards one domain event to the dispatcher
func (b *EventBridge) Handle(ctx context.Context, event shared.DomainEvent) error {
	b.dispatcher.Trigger(ctx, event.TenantID(), event.EventType(), event.Payload())
	return nil
}

// EventTypes returns an empty slice: the bridge receives all events
func (b *EventBridge) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*EventBridge)(nil)

// Payload field helpers shared by the actions.

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, bool) {
	s := payloadString(payload, key)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func payloadDecimal(payload map[string]any, key string) decimal.Decimal {
	switch v := payload[key].(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}
