package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ValidateConfigInput checks a raw configuration map against a target schema.
type ValidateConfigInput struct {
	Target string         `json:"target"`
	Config map[string]any `json:"config"`
}

type configValidator interface {
	ValidateConfig(target string, config map[string]any) error
}

// ValidateConfigCommand validates host-supplied configuration before a
// surface attempts to embed with it.
type ValidateConfigCommand struct {
	service   configValidator
	telemetry Telemetry
}

// NewValidateConfigCommand creates the command.
func NewValidateConfigCommand(service configValidator, telemetry Telemetry) *ValidateConfigCommand {
	return &ValidateConfigCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ValidateConfigInput] = (*ValidateConfigCommand)(nil)

// Execute runs schema validation for the target.
func (c *ValidateConfigCommand) Execute(ctx context.Context, msg ValidateConfigInput) error {
	if c.service == nil {
		return errors.New("validate command requires service")
	}
	if err := c.service.ValidateConfig(msg.Target, msg.Config); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "vizembed.config.validate", map[string]any{
		"target": msg.Target,
	})
	return nil
}
