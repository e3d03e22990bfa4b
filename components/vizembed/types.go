package vizembed

import "context"

// VizRuntime abstracts the third-party visualization library. Host adapters
// bind their container element/surface at construction time; the core only
// hands over the embed URL and display options.
type VizRuntime interface {
	Create(ctx context.Context, embedURL string, opts VizOptions) (VizHandle, error)
}

// VizHandle is the minimal surface the core needs from an instantiated
// visualization: selection listener registration and teardown.
type VizHandle interface {
	AddEventListener(event string, handler func(VizEvent))
	Dispose()
}

// VizEvent is the native selection event raised by the visualization runtime.
type VizEvent interface {
	Worksheet() Worksheet
}

// Worksheet identifies the view a selection happened on.
type Worksheet interface {
	Name() string
}

// LibraryLoader resolves once the visualization library's runtime symbols are
// available. A load failure is fatal for the embed instance; there is no retry.
type LibraryLoader interface {
	Load(ctx context.Context) error
}

// FieldResolver supplies a record field value from the host data source.
type FieldResolver interface {
	ResolveField(ctx context.Context, objectAPIName, recordID, field string) (FilterValue, error)
}

// ViewConfig is the declarative configuration supplied by the host surface.
type ViewConfig struct {
	VizURL            string `json:"viz_url" yaml:"viz_url"`
	ShowTabs          bool   `json:"show_tabs" yaml:"show_tabs"`
	ShowToolbar       bool   `json:"show_toolbar" yaml:"show_toolbar"`
	Height            int    `json:"height" yaml:"height"`
	FilterOnRecordID  bool   `json:"filter_on_record_id" yaml:"filter_on_record_id"`
	ObjectAPIName     string `json:"object_api_name,omitempty" yaml:"object_api_name,omitempty"`
	RecordID          string `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	TabFilterField    string `json:"tab_filter_field,omitempty" yaml:"tab_filter_field,omitempty"`
	SourceFilterField string `json:"source_filter_field,omitempty" yaml:"source_filter_field,omitempty"`
}

// HasAdvancedFilter reports whether both filter fields are configured.
// Exactly one being set is an invalid configuration.
func (c ViewConfig) HasAdvancedFilter() bool {
	return c.TabFilterField != "" && c.SourceFilterField != ""
}

// FilterValue is a scalar resolved from the host record for the configured
// source filter field. Defined is false until resolution completes.
type FilterValue struct {
	Value   string
	Defined bool
}

// DeviceContext carries mobile-host parameters derived from the user agent.
// DeviceID is stable within a single render pass only; it is never persisted.
type DeviceContext struct {
	IsMobileHost bool
	DeviceID     string
	DeviceName   string
}

// VizOptions is the display options object handed to the runtime constructor.
type VizOptions struct {
	HideTabs    bool
	HideToolbar bool
	Height      string
	Width       string
}

// SelectionEvent is the canonical payload published on the bus. Consumers
// must tolerate additive fields.
type SelectionEvent struct {
	SelectedTarget string `json:"selectedTarget"`
}

// VizTargetDefinition describes an embeddable visualization target: metadata,
// the rename table applied to its worksheet names, and an optional JSON
// schema constraining host-supplied configuration.
type VizTargetDefinition struct {
	Code        string            `json:"code" yaml:"code"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Renames     map[string]string `json:"renames,omitempty" yaml:"renames,omitempty"`
	Schema      map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// TargetRegistry stores viz target definitions discoverable via hooks or
// manifests.
type TargetRegistry interface {
	RegisterTarget(def VizTargetDefinition) error
	Target(code string) (VizTargetDefinition, bool)
	Targets() []VizTargetDefinition
	RenameTable(code string) map[string]string
}

// ConfigValidator validates raw configuration payloads against a target schema.
type ConfigValidator interface {
	Validate(def VizTargetDefinition, config map[string]any) error
}
