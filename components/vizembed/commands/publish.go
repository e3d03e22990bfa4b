package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

// PublishSelectionInput relays a raw worksheet selection onto the bus.
type PublishSelectionInput struct {
	Target    string `json:"target"`
	Worksheet string `json:"worksheet"`
}

type selectionPublisher interface {
	PublishSelection(ctx context.Context, target, worksheet string) (vizembed.SelectionEvent, error)
}

// PublishSelectionCommand forwards selections through the service relay.
type PublishSelectionCommand struct {
	service   selectionPublisher
	telemetry Telemetry
}

// NewPublishSelectionCommand creates the command.
func NewPublishSelectionCommand(service selectionPublisher, telemetry Telemetry) *PublishSelectionCommand {
	return &PublishSelectionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PublishSelectionInput] = (*PublishSelectionCommand)(nil)

// Execute normalizes and publishes the selection.
func (c *PublishSelectionCommand) Execute(ctx context.Context, msg PublishSelectionInput) error {
	if c.service == nil {
		return errors.New("publish command requires service")
	}
	if msg.Worksheet == "" {
		return errors.New("publish command requires a worksheet name")
	}
	event, err := c.service.PublishSelection(ctx, msg.Target, msg.Worksheet)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "vizembed.selection.relay", map[string]any{
		"target":   msg.Target,
		"selected": event.SelectedTarget,
	})
	return nil
}
