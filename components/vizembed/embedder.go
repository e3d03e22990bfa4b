package vizembed

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State tracks embedder lifecycle progress.
type State int

const (
	StateIdle State = iota
	StateAwaitingLibrary
	StateAwaitingFilterValue
	StateReady
	StateRendered
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLibrary:
		return "awaiting-library"
	case StateAwaitingFilterValue:
		return "awaiting-filter-value"
	case StateReady:
		return "ready"
	case StateRendered:
		return "rendered"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrLoadFailure wraps library-load errors. Fatal for the embed
	// instance; there is no retry.
	ErrLoadFailure = errors.New("visualization library failed to load")
	// ErrResolutionFailure wraps record field lookups that failed or
	// resolved to an undefined value.
	ErrResolutionFailure = errors.New("record field could not be resolved")

	errAlreadyMounted = errors.New("vizembed: embedder already mounted")
	errMissingRuntime = errors.New("vizembed: visualization runtime is required")
)

// EmbedderOption customizes an Embedder.
type EmbedderOption func(*Embedder)

// WithUserAgent supplies the host user agent for mobile-context detection.
func WithUserAgent(ua string) EmbedderOption {
	return func(e *Embedder) {
		e.userAgent = ua
	}
}

// WithClientTag overrides the client id sent with mobile parameters.
func WithClientTag(tag string) EmbedderOption {
	return func(e *Embedder) {
		if tag != "" {
			e.clientTag = tag
		}
	}
}

// WithResolver wires a field resolver driven during Mount. Without one the
// host feeds values through OnFieldValue.
func WithResolver(resolver FieldResolver) EmbedderOption {
	return func(e *Embedder) {
		e.resolver = resolver
	}
}

// WithEmbedderTelemetry wires a telemetry sink.
func WithEmbedderTelemetry(t Telemetry) EmbedderOption {
	return func(e *Embedder) {
		e.telemetry = normalizeTelemetry(t)
	}
}

// Embedder owns one embedded visualization instance: it waits for external
// readiness signals, builds the embed URL, instantiates the runtime object,
// and wires its selection event to the relay. It is not reusable after
// Destroy.
type Embedder struct {
	cfg       ViewConfig
	runtime   VizRuntime
	loader    LibraryLoader
	resolver  FieldResolver
	relay     *SelectionRelay
	builder   URLBuilder
	userAgent string
	clientTag string
	telemetry Telemetry

	mu      sync.Mutex
	state   State
	filter  FilterValue
	handle  VizHandle
	lastURL string
	errMsg  string
	alive   bool
}

// NewEmbedder builds an embedder in the Idle state.
func NewEmbedder(cfg ViewConfig, runtime VizRuntime, loader LibraryLoader, relay *SelectionRelay, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		cfg:       cfg,
		runtime:   runtime,
		loader:    loader,
		relay:     relay,
		clientTag: DefaultClientTag,
		telemetry: noopTelemetry{},
		state:     StateIdle,
		alive:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mount loads the visualization library and, when a source filter field is
// configured, drives field resolution. A load failure is fatal: the embedder
// enters the Error state and stays there.
func (e *Embedder) Mount(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return errAlreadyMounted
	}
	if e.runtime == nil {
		e.mu.Unlock()
		return e.fail(ctx, errMissingRuntime)
	}
	e.state = StateAwaitingLibrary
	loader := e.loader
	e.mu.Unlock()

	if loader != nil {
		if err := loader.Load(ctx); err != nil {
			return e.fail(ctx, fmt.Errorf("%w: %v", ErrLoadFailure, err))
		}
	}

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return nil
	}
	if e.cfg.SourceFilterField != "" {
		e.state = StateAwaitingFilterValue
		resolver := e.resolver
		e.mu.Unlock()
		if resolver != nil {
			value, err := resolver.ResolveField(ctx, e.cfg.ObjectAPIName, e.cfg.RecordID, e.cfg.SourceFilterField)
			e.OnFieldValue(ctx, value, err)
			if msg := e.ErrorMessage(); msg != "" {
				return fmt.Errorf("vizembed: %s", msg)
			}
		}
		return nil
	}
	e.state = StateReady
	e.mu.Unlock()
	return nil
}

// OnFieldValue feeds a resolved filter value into the state machine. The host
// invokes it for every resolver callback; the underlying record may change
// and re-fire resolution, so repeated calls are expected. Late callbacks
// after Destroy are ignored.
func (e *Embedder) OnFieldValue(ctx context.Context, value FilterValue, err error) {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	field := e.cfg.SourceFilterField
	e.mu.Unlock()
	if err != nil {
		e.fail(ctx, fmt.Errorf("%w: %s: %v", ErrResolutionFailure, field, err))
		return
	}
	if !value.Defined {
		e.fail(ctx, fmt.Errorf("%w: field %s is not resolvable on this record", ErrResolutionFailure, field))
		return
	}
	e.mu.Lock()
	e.filter = value
	if e.state == StateAwaitingFilterValue {
		e.state = StateReady
	}
	e.mu.Unlock()
}

// RenderPass re-runs the readiness checks; the host calls it from every
// render-capable lifecycle callback. While inputs are unmet it is a no-op,
// as it is once the visualization is instantiated: the embedder never
// re-creates the runtime object on a routine callback.
func (e *Embedder) RenderPass(ctx context.Context, containerWidthPx int) error {
	e.mu.Lock()
	if !e.alive || e.state != StateReady {
		e.mu.Unlock()
		return nil
	}
	cfg := e.cfg
	filter := e.filter
	e.mu.Unlock()

	u, err := e.builder.Build(cfg, containerWidthPx, filter)
	if err != nil {
		return e.fail(ctx, err)
	}
	if dc, ok := DetectMobileContext(e.userAgent); ok {
		ApplyDeviceContextWithTag(u, dc, e.clientTag)
	}

	handle, err := e.runtime.Create(ctx, u.String(), cfg.DisplayOptions())
	if err != nil {
		return e.fail(ctx, fmt.Errorf("vizembed: instantiate visualization: %w", err))
	}

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		handle.Dispose()
		return nil
	}
	e.handle = handle
	e.lastURL = u.String()
	e.state = StateRendered
	relay := e.relay
	e.mu.Unlock()

	if relay != nil {
		// The closure keeps the relay reachable however the runtime
		// decides to invoke the listener.
		handle.AddEventListener(MarkSelectionEvent, func(native VizEvent) {
			relay.HandleSelection(context.Background(), native)
		})
	}
	e.telemetry.Record(ctx, "vizembed.embed.render", map[string]any{
		"url": u.String(),
	})
	return nil
}

// Destroy tears down the runtime instance. Late async completions observe
// the liveness flag and stop instead of touching a detached surface.
func (e *Embedder) Destroy() {
	e.mu.Lock()
	e.alive = false
	handle := e.handle
	e.handle = nil
	e.mu.Unlock()
	if handle != nil {
		handle.Dispose()
	}
}

// State returns the current lifecycle state.
func (e *Embedder) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ErrorMessage returns the human-readable message for the error surface, or
// empty when the embedder is healthy.
func (e *Embedder) ErrorMessage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// EmbedURL returns the URL handed to the runtime on the last render, or
// empty before the first render.
func (e *Embedder) EmbedURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastURL
}

func (e *Embedder) fail(ctx context.Context, err error) error {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return err
	}
	e.state = StateError
	e.errMsg = humanMessage(err)
	e.mu.Unlock()
	e.telemetry.Record(ctx, "vizembed.embed.error", map[string]any{
		"error": err.Error(),
	})
	return err
}

// DisplayOptions derives the runtime options object from the configuration.
func (c ViewConfig) DisplayOptions() VizOptions {
	return VizOptions{
		HideTabs:    !c.ShowTabs,
		HideToolbar: !c.ShowToolbar,
		Height:      fmt.Sprintf("%dpx", c.Height),
		Width:       "100%",
	}
}

func humanMessage(err error) string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Message
	}
	return err.Error()
}
