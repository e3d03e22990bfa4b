package vizembed

import "context"

// MarkSelectionEvent is the native event name the visualization runtime
// raises when the user selects a mark or data point.
const MarkSelectionEvent = "marksSelection"

// LocalListener receives selection events on the same surface as the
// producer, for listeners that are not on the bus.
type LocalListener func(SelectionEvent)

// RelayOption customizes a SelectionRelay.
type RelayOption func(*SelectionRelay)

// WithRelayTopic overrides the bus topic (defaults to TopicSelection).
func WithRelayTopic(topic string) RelayOption {
	return func(r *SelectionRelay) {
		if topic != "" {
			r.topic = topic
		}
	}
}

// WithLocalListener registers a same-surface listener invoked with the same
// detail that is published on the bus.
func WithLocalListener(fn LocalListener) RelayOption {
	return func(r *SelectionRelay) {
		r.local = fn
	}
}

// WithRelayTelemetry wires a telemetry sink for relay failures.
func WithRelayTelemetry(t Telemetry) RelayOption {
	return func(r *SelectionRelay) {
		r.telemetry = normalizeTelemetry(t)
	}
}

// SelectionRelay normalizes native selection events and forwards them through
// the bus. The rename table maps internal worksheet identifiers to
// human-facing labels; unmapped names pass through unchanged.
type SelectionRelay struct {
	bus       *Bus
	topic     string
	renames   map[string]string
	local     LocalListener
	telemetry Telemetry
}

// NewSelectionRelay builds a relay publishing on the given bus.
func NewSelectionRelay(bus *Bus, renames map[string]string, opts ...RelayOption) *SelectionRelay {
	r := &SelectionRelay{
		bus:       bus,
		topic:     TopicSelection,
		renames:   renames,
		telemetry: noopTelemetry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleSelection is the callback attached to the runtime's native selection
// event. It is safe against a misbehaving runtime: any panic while reading
// the native event is recovered and recorded, never propagated.
func (r *SelectionRelay) HandleSelection(ctx context.Context, native VizEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.telemetry.Record(ctx, "vizembed.relay.runtime_failure", map[string]any{
				"panic": rec,
			})
		}
	}()
	if native == nil {
		return
	}
	ws := native.Worksheet()
	if ws == nil {
		return
	}
	r.Publish(ctx, ws.Name())
}

// Publish normalizes a raw worksheet name, forwards it to the bus and the
// local listener, and returns the published event.
func (r *SelectionRelay) Publish(ctx context.Context, rawName string) SelectionEvent {
	event := r.Normalize(rawName)
	if r.bus != nil {
		r.bus.Publish(ctx, r.topic, event)
	}
	if r.local != nil {
		r.local(event)
	}
	r.telemetry.Record(ctx, "vizembed.selection.publish", map[string]any{
		"target": event.SelectedTarget,
	})
	return event
}

// Normalize maps a raw worksheet name through the rename table.
func (r *SelectionRelay) Normalize(rawName string) SelectionEvent {
	if label, ok := r.renames[rawName]; ok && label != "" {
		return SelectionEvent{SelectedTarget: label}
	}
	return SelectionEvent{SelectedTarget: rawName}
}
