package vizembed

import (
	"context"
	"errors"
	"fmt"
)

var errUnknownTarget = errors.New("vizembed: unknown viz target")

// Options configures the Service. Every collaborator is provided via
// interface so host applications can swap implementations without importing
// internal packages.
type Options struct {
	Runtime   VizRuntime
	Loader    LibraryLoader
	Resolver  FieldResolver
	Registry  TargetRegistry
	Validator ConfigValidator
	Bus       *Bus
	Telemetry Telemetry
	ClientTag string
}

// Service orchestrates embed URL derivation, embedder construction, and the
// selection relay for registered viz targets.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Bus == nil {
		opts.Bus = NewBus(WithBusTelemetry(opts.Telemetry))
	}
	if opts.ClientTag == "" {
		opts.ClientTag = DefaultClientTag
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Bus exposes the shared selection bus for subscriber components.
func (s *Service) Bus() *Bus {
	return s.opts.Bus
}

// Registry exposes the target registry.
func (s *Service) Registry() TargetRegistry {
	return s.opts.Registry
}

// BuildEmbedRequest captures the inputs of a URL derivation pass.
type BuildEmbedRequest struct {
	Config           ViewConfig  `json:"config"`
	ContainerWidthPx int         `json:"container_width_px"`
	Filter           FilterValue `json:"-"`
	UserAgent        string      `json:"-"`
}

// BuildEmbedURL derives the fully parameterized embed URL, including mobile
// parameters when the user agent identifies the mobile container.
func (s *Service) BuildEmbedURL(ctx context.Context, req BuildEmbedRequest) (string, error) {
	u, err := URLBuilder{}.Build(req.Config, req.ContainerWidthPx, req.Filter)
	if err != nil {
		s.opts.Telemetry.Record(ctx, "vizembed.url.rejected", map[string]any{
			"error": err.Error(),
		})
		return "", err
	}
	if dc, ok := DetectMobileContext(req.UserAgent); ok {
		ApplyDeviceContextWithTag(u, dc, s.opts.ClientTag)
	}
	s.opts.Telemetry.Record(ctx, "vizembed.url.build", map[string]any{
		"host": u.Host,
	})
	return u.String(), nil
}

// NewEmbedder wires an embedder for the given target, attaching a relay that
// uses the target's rename table. Extra options are applied after the
// service-level ones and may override them.
func (s *Service) NewEmbedder(target string, cfg ViewConfig, opts ...EmbedderOption) (*Embedder, error) {
	if s.opts.Runtime == nil {
		return nil, errMissingRuntime
	}
	if _, ok := s.opts.Registry.Target(target); !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTarget, target)
	}
	relay := NewSelectionRelay(s.opts.Bus, s.opts.Registry.RenameTable(target),
		WithRelayTelemetry(s.opts.Telemetry))
	base := []EmbedderOption{
		WithEmbedderTelemetry(s.opts.Telemetry),
		WithClientTag(s.opts.ClientTag),
	}
	if s.opts.Resolver != nil {
		base = append(base, WithResolver(s.opts.Resolver))
	}
	return NewEmbedder(cfg, s.opts.Runtime, s.opts.Loader, relay, append(base, opts...)...), nil
}

// PublishSelection normalizes a raw worksheet name for the target and
// publishes it on the bus. Used by transports relaying selections on behalf
// of a remote embed surface.
func (s *Service) PublishSelection(ctx context.Context, target, worksheet string) (SelectionEvent, error) {
	if _, ok := s.opts.Registry.Target(target); !ok {
		return SelectionEvent{}, fmt.Errorf("%w: %s", errUnknownTarget, target)
	}
	relay := NewSelectionRelay(s.opts.Bus, s.opts.Registry.RenameTable(target),
		WithRelayTelemetry(s.opts.Telemetry))
	return relay.Publish(ctx, worksheet), nil
}

// ValidateConfig validates a raw configuration map against the target schema.
func (s *Service) ValidateConfig(target string, config map[string]any) error {
	def, ok := s.opts.Registry.Target(target)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownTarget, target)
	}
	return s.opts.Validator.Validate(def, config)
}

// Subscribe registers a selection handler on the shared bus.
func (s *Service) Subscribe(handler Handler) Subscription {
	return s.opts.Bus.Subscribe(TopicSelection, handler)
}
