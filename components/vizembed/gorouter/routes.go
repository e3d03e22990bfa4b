package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
	"github.com/goliatone/go-vizembed/components/vizembed/commands"
	"github.com/goliatone/go-vizembed/components/vizembed/httpapi"
)

// Config wires go-router with vizembed controllers, APIs, and the selection
// stream.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *vizembed.Controller
	API        httpapi.Executor
	URLs       httpapi.URLDeriver
	Broadcast  *vizembed.SelectionBroadcast
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for embed endpoints.
type RouteConfig struct {
	HTML       string
	URL        string
	Selections string
	Validate   string
	WebSocket  string
}

// Register mounts embed routes (HTML, JSON, REST, WebSocket) on a go-router
// router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/viz"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		target := ctx.Param("target")
		req, err := buildRequestFromQuery(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderEmbed(ctx.Context(), target, req, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.URLs != nil {
		group.Post(routes.URL, router.WrapHandler(func(ctx router.Context) error {
			var payload httpapi.BuildEmbedPayload
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			req := vizembed.BuildEmbedRequest{
				Config:           payload.Config,
				ContainerWidthPx: payload.ContainerWidthPx,
				UserAgent:        ctx.Header("User-Agent"),
			}
			if payload.FilterValue != nil {
				req.Filter = vizembed.FilterValue{Value: *payload.FilterValue, Defined: true}
			}
			embedURL, err := cfg.URLs.BuildEmbedURL(ctx.Context(), req)
			if err != nil {
				var cfgErr *vizembed.ConfigError
				if errors.As(err, &cfgErr) {
					return respondError(ctx, http.StatusUnprocessableEntity, err)
				}
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"embed_url": embedURL})
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Selections, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.PublishSelectionInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Publish(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "published"})
	}))

	r.Post(routes.Validate, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ValidateConfigInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if payload.Target == "" {
			payload.Target = ctx.Param("code")
		}
		if err := api.Validate(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusUnprocessableEntity, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "valid"})
	}))
}

func registerWebSocket[T any](r router.Router[T], broadcast *vizembed.SelectionBroadcast, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := broadcast.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// buildRequestFromQuery binds the declarative configuration surface from
// query parameters, the way a host page passes it down.
func buildRequestFromQuery(ctx router.Context) (vizembed.BuildEmbedRequest, error) {
	height, err := queryInt(ctx, "height", 600)
	if err != nil {
		return vizembed.BuildEmbedRequest{}, err
	}
	width, err := queryInt(ctx, "width", 800)
	if err != nil {
		return vizembed.BuildEmbedRequest{}, err
	}
	req := vizembed.BuildEmbedRequest{
		Config: vizembed.ViewConfig{
			VizURL:            ctx.Query("viz_url"),
			ShowTabs:          queryBool(ctx, "show_tabs"),
			ShowToolbar:       queryBool(ctx, "show_toolbar"),
			Height:            height,
			FilterOnRecordID:  queryBool(ctx, "filter_on_record_id"),
			ObjectAPIName:     ctx.Query("object_api_name"),
			RecordID:          ctx.Query("record_id"),
			TabFilterField:    ctx.Query("tab_filter_field"),
			SourceFilterField: ctx.Query("source_filter_field"),
		},
		ContainerWidthPx: width,
		UserAgent:        ctx.Header("User-Agent"),
	}
	if value := ctx.Query("filter_value"); value != "" {
		req.Filter = vizembed.FilterValue{Value: value, Defined: true}
	}
	return req, nil
}

func queryBool(ctx router.Context, name string) bool {
	switch ctx.Query(name) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func queryInt(ctx router.Context, name string, fallback int) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("gorouter: " + name + " must be an integer")
	}
	return value, nil
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/embed/:target"
	}
	if routes.URL == "" {
		routes.URL = "/embed/url"
	}
	if routes.Selections == "" {
		routes.Selections = "/selections"
	}
	if routes.Validate == "" {
		routes.Validate = "/targets/:code/validate"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/selections/ws"
	}
	return routes
}
