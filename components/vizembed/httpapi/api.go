package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
	"github.com/goliatone/go-vizembed/components/vizembed/commands"
)

// Executor is the command surface the transports depend on.
type Executor interface {
	Publish(ctx context.Context, input commands.PublishSelectionInput) error
	Validate(ctx context.Context, input commands.ValidateConfigInput) error
}

// CommandExecutor adapts go-command Commanders to the Executor interface.
type CommandExecutor struct {
	PublishCommander  gocommand.Commander[commands.PublishSelectionInput]
	ValidateCommander gocommand.Commander[commands.ValidateConfigInput]
}

// Publish executes the publish-selection command.
func (e *CommandExecutor) Publish(ctx context.Context, input commands.PublishSelectionInput) error {
	if e.PublishCommander == nil {
		return errors.New("httpapi: publish commander not configured")
	}
	return e.PublishCommander.Execute(ctx, input)
}

// Validate executes the validate-config command.
func (e *CommandExecutor) Validate(ctx context.Context, input commands.ValidateConfigInput) error {
	if e.ValidateCommander == nil {
		return errors.New("httpapi: validate commander not configured")
	}
	return e.ValidateCommander.Execute(ctx, input)
}

// URLDeriver is the slice of the service the build endpoint needs.
type URLDeriver interface {
	BuildEmbedURL(ctx context.Context, req vizembed.BuildEmbedRequest) (string, error)
}

// Handlers exposes HTTP endpoints backed by shared commands and the service.
type Handlers struct {
	API  Executor
	URLs URLDeriver
}

// BuildEmbedPayload is the wire form of a URL derivation request. The filter
// value distinguishes absent (null) from empty string.
type BuildEmbedPayload struct {
	Config           vizembed.ViewConfig `json:"config"`
	ContainerWidthPx int                 `json:"container_width_px"`
	FilterValue      *string             `json:"filter_value,omitempty"`
}

func (h *Handlers) HandleBuildEmbedURL(w http.ResponseWriter, r *http.Request) {
	var payload BuildEmbedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := vizembed.BuildEmbedRequest{
		Config:           payload.Config,
		ContainerWidthPx: payload.ContainerWidthPx,
		UserAgent:        r.UserAgent(),
	}
	if payload.FilterValue != nil {
		req.Filter = vizembed.FilterValue{Value: *payload.FilterValue, Defined: true}
	}
	embedURL, err := h.URLs.BuildEmbedURL(r.Context(), req)
	if err != nil {
		var cfgErr *vizembed.ConfigError
		if errors.As(err, &cfgErr) {
			http.Error(w, cfgErr.Message, http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"embed_url": embedURL})
}

func (h *Handlers) HandlePublishSelection(w http.ResponseWriter, r *http.Request) {
	var payload commands.PublishSelectionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Publish(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleValidateConfig(w http.ResponseWriter, r *http.Request) {
	var payload commands.ValidateConfigInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Validate(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
}
