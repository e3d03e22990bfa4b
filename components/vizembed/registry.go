package vizembed

import (
	"fmt"
	"sync"
)

// TargetHook lets packages register viz targets during init().
type TargetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []TargetHook
)

// RegisterTargetHook registers a hook executed against new registries.
func RegisterTargetHook(h TargetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements TargetRegistry with hook + manifest support.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]VizTargetDefinition
}

// NewRegistry builds a registry seeded with the default targets and applies
// global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		targets: map[string]VizTargetDefinition{},
	}
	for _, def := range DefaultTargetDefinitions() {
		_ = reg.RegisterTarget(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered target hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTarget stores a viz target definition.
func (r *Registry) RegisterTarget(def VizTargetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("vizembed: target definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[def.Code] = def
	return nil
}

// Target fetches a definition by code.
func (r *Registry) Target(code string) (VizTargetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.targets[code]
	return def, ok
}

// Targets returns all registered definitions.
func (r *Registry) Targets() []VizTargetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]VizTargetDefinition, 0, len(r.targets))
	for _, def := range r.targets {
		defs = append(defs, def)
	}
	return defs
}

// RenameTable returns a copy of the rename table for a target, empty when
// the target is unknown. Callers may hold the result across renders without
// observing later registry mutations.
func (r *Registry) RenameTable(code string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.targets[code]
	if !ok || len(def.Renames) == 0 {
		return map[string]string{}
	}
	renames := make(map[string]string, len(def.Renames))
	for k, v := range def.Renames {
		renames[k] = v
	}
	return renames
}
