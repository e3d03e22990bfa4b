package vizembed

// TargetBacklogOperations is the default embed target: the distribution
// backlog workbook shown on account pages.
const TargetBacklogOperations = "ops.viz.backlog"

var defaultTargetDefinitions = []VizTargetDefinition{
	{
		Code:        TargetBacklogOperations,
		Name:        "Backlog Operations",
		Description: "Days-of-backlog workbook filtered to the current account",
		Category:    "operations",
		Renames: map[string]string{
			"BPDaysOfBacklog": "Breakpack",
			"FCDaysOfBacklog": "Full Case",
			"SSDaysOfBacklog": "Store Split",
		},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"viz_url", "height"},
			"properties": map[string]any{
				"viz_url":             map[string]any{"type": "string"},
				"show_tabs":           map[string]any{"type": "boolean"},
				"show_toolbar":        map[string]any{"type": "boolean"},
				"height":              map[string]any{"type": "integer", "minimum": 1},
				"filter_on_record_id": map[string]any{"type": "boolean"},
				"object_api_name":     map[string]any{"type": "string"},
				"record_id":           map[string]any{"type": "string"},
				"tab_filter_field":    map[string]any{"type": "string"},
				"source_filter_field": map[string]any{"type": "string"},
			},
		},
	},
}

// DefaultTargetDefinitions returns the built-in viz target definitions.
func DefaultTargetDefinitions() []VizTargetDefinition {
	defs := make([]VizTargetDefinition, len(defaultTargetDefinitions))
	copy(defs, defaultTargetDefinitions)
	return defs
}
