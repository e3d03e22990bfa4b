package vizembed

import (
	"context"
	"errors"
	"io"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// embedURLDeriver is the slice of Service the controller depends on.
type embedURLDeriver interface {
	BuildEmbedURL(ctx context.Context, req BuildEmbedRequest) (string, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service       embedURLDeriver
	Renderer      Renderer
	EmbedTemplate string
	ErrorTemplate string
}

// Controller renders the embed container page for a host surface, or the
// replacement error surface when the configuration is rejected. The error
// surface is the only user-visible error channel; no partial embed is shown.
type Controller struct {
	service       embedURLDeriver
	renderer      Renderer
	embedTemplate string
	errorTemplate string
}

// NewController builds a controller with default template names.
func NewController(opts ControllerOptions) *Controller {
	if opts.EmbedTemplate == "" {
		opts.EmbedTemplate = "embed.html"
	}
	if opts.ErrorTemplate == "" {
		opts.ErrorTemplate = "error.html"
	}
	return &Controller{
		service:       opts.Service,
		renderer:      opts.Renderer,
		embedTemplate: opts.EmbedTemplate,
		errorTemplate: opts.ErrorTemplate,
	}
}

// RenderEmbed derives the embed URL and writes the container page. A rejected
// configuration writes the error surface instead and reports no error to the
// caller.
func (c *Controller) RenderEmbed(ctx context.Context, target string, req BuildEmbedRequest, out io.Writer) error {
	if c.renderer == nil || c.service == nil {
		return errors.New("vizembed: controller requires a service and a renderer")
	}
	embedURL, err := c.service.BuildEmbedURL(ctx, req)
	if err != nil {
		return c.RenderError(ctx, humanMessage(err), out)
	}
	payload := map[string]any{
		"target":    target,
		"embed_url": embedURL,
		"options":   req.Config.DisplayOptions(),
		"topic":     TopicSelection,
	}
	_, err = c.renderer.Render(c.embedTemplate, payload, out)
	return err
}

// RenderError writes the replacement error surface.
func (c *Controller) RenderError(_ context.Context, message string, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("vizembed: controller requires a renderer")
	}
	_, err := c.renderer.Render(c.errorTemplate, map[string]any{"message": message}, out)
	return err
}
