package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	router "github.com/goliatone/go-router"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
	"github.com/goliatone/go-vizembed/components/vizembed/commands"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestRegisterHTMLRoute(t *testing.T) {
	mock := newMockRouter()
	service := vizembed.NewService(vizembed.Options{})
	renderer := &stubRenderer{}
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})

	cfg := Config[struct{}]{
		Router:     mock,
		Controller: controller,
		API:        noopExecutor{},
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	handlerKey := "GET:/viz/embed/:target"
	h, ok := mock.routes[handlerKey]
	if !ok {
		t.Fatalf("expected embed route to be registered")
	}

	ctx := newMockContext()
	ctx.params["target"] = "ops.viz.backlog"
	ctx.query["viz_url"] = "https://viz.example.com/views/Backlog/Overview"
	ctx.query["height"] = "600"
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(ctx.body) == 0 {
		t.Fatalf("expected response body")
	}
	if renderer.calls == 0 {
		t.Fatalf("renderer not invoked")
	}
	if ctx.headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("expected html content type, got %q", ctx.headers["Content-Type"])
	}
}

func TestRegisterHTMLRouteRejectsBadQuery(t *testing.T) {
	mock := newMockRouter()
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  vizembed.NewService(vizembed.Options{}),
		Renderer: &stubRenderer{},
	})
	if err := Register(Config[struct{}]{Router: mock, Controller: controller}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.query["height"] = "tall"
	if err := mock.routes["GET:/viz/embed/:target"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != 400 {
		t.Fatalf("expected 400 status, got %d", ctx.status)
	}
}

func TestRegisterURLRoute(t *testing.T) {
	mock := newMockRouter()
	service := vizembed.NewService(vizembed.Options{})
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  service,
		Renderer: &stubRenderer{},
	})

	cfg := Config[struct{}]{
		Router:     mock,
		Controller: controller,
		URLs:       service,
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	h, ok := mock.routes["POST:/viz/embed/url"]
	if !ok {
		t.Fatalf("expected URL route to be registered")
	}

	ctx := newMockContext()
	ctx.body = []byte(`{"config":{"viz_url":"https://viz.example.com/views/Backlog/Overview","height":600},"container_width_px":800}`)
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != 200 {
		t.Fatalf("expected 200 status, got %d: %s", ctx.status, ctx.body)
	}
	if !strings.Contains(string(ctx.body), "embed_url") {
		t.Fatalf("expected embed_url in response, got %s", ctx.body)
	}
}

func TestRegisterURLRouteRejectsInvalidConfig(t *testing.T) {
	mock := newMockRouter()
	service := vizembed.NewService(vizembed.Options{})
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  service,
		Renderer: &stubRenderer{},
	})
	if err := Register(Config[struct{}]{Router: mock, Controller: controller, URLs: service}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.body = []byte(`{"config":{"viz_url":"http://viz.example.com/views/Backlog/Overview","height":600},"container_width_px":800}`)
	if err := mock.routes["POST:/viz/embed/url"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != 422 {
		t.Fatalf("expected 422 status, got %d", ctx.status)
	}
}

func TestRegisterAPIRoutes(t *testing.T) {
	mock := newMockRouter()
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  vizembed.NewService(vizembed.Options{}),
		Renderer: &stubRenderer{},
	})
	exec := &recordingExecutor{}

	if err := Register(Config[struct{}]{Router: mock, Controller: controller, API: exec}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	publish, ok := mock.routes["POST:/viz/selections"]
	if !ok {
		t.Fatalf("expected selections route")
	}
	ctx := newMockContext()
	ctx.body = []byte(`{"target":"ops.viz.backlog","worksheet":"BPDaysOfBacklog"}`)
	if err := publish(ctx); err != nil {
		t.Fatalf("publish handler returned error: %v", err)
	}
	if ctx.status != 202 {
		t.Fatalf("expected 202 status, got %d", ctx.status)
	}
	if exec.published.Worksheet != "BPDaysOfBacklog" {
		t.Fatalf("expected publish forwarded, got %+v", exec.published)
	}

	validate, ok := mock.routes["POST:/viz/targets/:code/validate"]
	if !ok {
		t.Fatalf("expected validate route")
	}
	ctx = newMockContext()
	ctx.params["code"] = "ops.viz.backlog"
	ctx.body = []byte(`{"config":{"viz_url":"https://viz.example.com/v","height":600}}`)
	if err := validate(ctx); err != nil {
		t.Fatalf("validate handler returned error: %v", err)
	}
	if ctx.status != 200 {
		t.Fatalf("expected 200 status, got %d", ctx.status)
	}
	if exec.validated.Target != "ops.viz.backlog" {
		t.Fatalf("expected target from path param, got %+v", exec.validated)
	}
}

func TestRegisterWebSocketRoute(t *testing.T) {
	mock := newMockRouter()
	controller := vizembed.NewController(vizembed.ControllerOptions{
		Service:  vizembed.NewService(vizembed.Options{}),
		Renderer: &stubRenderer{},
	})
	broadcast := vizembed.NewSelectionBroadcast()

	if err := Register(Config[struct{}]{Router: mock, Controller: controller, Broadcast: broadcast}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, ok := mock.ws["/viz/selections/ws"]; !ok {
		t.Fatalf("expected websocket route to be registered")
	}
}

// --- Test helpers ---

type mockRouter struct {
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	full := m.prefix + path
	m.routes[method+":"+full] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	full := m.prefix + path
	m.ws[full] = handler
	return mockRouteInfo{}
}

func (m *mockRouter) Handle(method router.HTTPMethod, path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(method), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Mount(prefix string) router.Router[struct{}] {
	return m.Group(prefix)
}

func (m *mockRouter) WithGroup(path string, cb func(r router.Router[struct{}])) router.Router[struct{}] {
	cb(m.Group(path))
	return m
}

func (m *mockRouter) Use(mw ...router.MiddlewareFunc) router.Router[struct{}] { return m }

func (m *mockRouter) Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PUT), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PATCH), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Head(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.HEAD), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Static(prefix, root string, config ...router.Static) router.Router[struct{}] {
	return m
}

func (m *mockRouter) Routes() []router.RouteDefinition { return nil }

func (m *mockRouter) ValidateRoutes() []error { return nil }

func (m *mockRouter) PrintRoutes() {}

func (m *mockRouter) WithLogger(logger router.Logger) router.Router[struct{}] { return m }

type mockRouteInfo struct{}

func (mockRouteInfo) SetName(string) router.RouteInfo        { return mockRouteInfo{} }
func (mockRouteInfo) SetDescription(string) router.RouteInfo { return mockRouteInfo{} }
func (mockRouteInfo) SetSummary(s string) router.RouteInfo   { return mockRouteInfo{} }
func (mockRouteInfo) AddTags(...string) router.RouteInfo     { return mockRouteInfo{} }
func (mockRouteInfo) AddParameter(name, in string, required bool, schema map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) SetRequestBody(desc string, required bool, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) AddResponse(code int, desc string, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}

type mockContext struct {
	ctx     context.Context
	headers map[string]string
	reqHdrs map[string]string
	query   map[string]string
	body    []byte
	locals  map[any]any
	params  map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		reqHdrs: map[string]string{},
		query:   map[string]string{},
		locals:  map[any]any{},
		params:  map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return m
}

func (m *mockContext) Header(name string) string {
	return m.reqHdrs[name]
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

func (m *mockContext) Method() string { return "" }

func (m *mockContext) Path() string { return "" }

func (m *mockContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (m *mockContext) QueryValues(name string) []string { return nil }

func (m *mockContext) QueryInt(name string, defaultValue int) int { return defaultValue }

func (m *mockContext) Queries() map[string]string { return m.query }

func (m *mockContext) LocalsMerge(key any, value map[string]any) map[string]any { return value }

func (m *mockContext) Render(name string, bind any, layouts ...string) error { return nil }

func (m *mockContext) Cookie(cookie *router.Cookie) {}

func (m *mockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) CookieParser(out any) error { return nil }

func (m *mockContext) Redirect(location string, status ...int) error { return nil }

func (m *mockContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	return nil
}

func (m *mockContext) RedirectBack(fallback string, status ...int) error { return nil }

func (m *mockContext) Referer() string { return "" }

func (m *mockContext) OriginalURL() string { return "" }

func (m *mockContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (m *mockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) IP() string { return "" }

func (m *mockContext) Status(code int) router.Context {
	m.status = code
	return m
}

func (m *mockContext) SendString(body string) error { return m.Send([]byte(body)) }

func (m *mockContext) SendStatus(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) SendStream(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.Send(data)
}

func (m *mockContext) NoContent(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) Set(key string, value any) { m.locals[key] = value }

func (m *mockContext) Get(key string, def any) any {
	if v, ok := m.locals[key]; ok {
		return v
	}
	return def
}

func (m *mockContext) GetString(key string, def string) string {
	if v, ok := m.locals[key].(string); ok {
		return v
	}
	return def
}

func (m *mockContext) GetInt(key string, def int) int {
	if v, ok := m.locals[key].(int); ok {
		return v
	}
	return def
}

func (m *mockContext) GetBool(key string, def bool) bool {
	if v, ok := m.locals[key].(bool); ok {
		return v
	}
	return def
}

func (m *mockContext) Bind(v any) error { return json.Unmarshal(m.body, v) }

func (m *mockContext) SetContext(ctx context.Context) { m.ctx = ctx }

func (m *mockContext) Next() error { return nil }

func (m *mockContext) RouteName() string { return "" }

func (m *mockContext) RouteParams() map[string]string { return m.params }

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

type recordingExecutor struct {
	published commands.PublishSelectionInput
	validated commands.ValidateConfigInput
}

func (e *recordingExecutor) Publish(_ context.Context, input commands.PublishSelectionInput) error {
	e.published = input
	return nil
}

func (e *recordingExecutor) Validate(_ context.Context, input commands.ValidateConfigInput) error {
	e.validated = input
	return nil
}

type noopExecutor struct{}

func (noopExecutor) Publish(context.Context, commands.PublishSelectionInput) error { return nil }
func (noopExecutor) Validate(context.Context, commands.ValidateConfigInput) error  { return nil }
