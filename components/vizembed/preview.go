package vizembed

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const previewChartHeight = "360px"

// SelectionCounter supplies aggregate selection counts per target label.
type SelectionCounter interface {
	CountsByTarget() map[string]int
}

// RenderCache memoizes rendered preview HTML so repeated fetches are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// PreviewCache is an in-memory TTL cache for rendered previews.
type PreviewCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedPreview
}

type cachedPreview struct {
	html    string
	expires time.Time
}

// NewPreviewCache builds a cache with the provided TTL.
func NewPreviewCache(ttl time.Duration) *PreviewCache {
	return &PreviewCache{
		ttl:     ttl,
		entries: make(map[string]cachedPreview),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *PreviewCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *PreviewCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *PreviewCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedPreview{
		html:    html,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// PreviewOption customizes a SelectionPreview.
type PreviewOption func(*SelectionPreview)

// WithPreviewCache injects a render cache.
func WithPreviewCache(cache RenderCache) PreviewOption {
	return func(p *SelectionPreview) {
		p.cache = cache
	}
}

// WithPreviewTheme overrides the echarts theme.
func WithPreviewTheme(theme string) PreviewOption {
	return func(p *SelectionPreview) {
		p.theme = theme
	}
}

// SelectionPreview renders recent selection activity as a server-side bar
// chart for the diagnostics panel. It never touches the embedded
// visualization itself.
type SelectionPreview struct {
	counter SelectionCounter
	cache   RenderCache
	theme   string
}

// NewSelectionPreview builds a preview over the given counter.
func NewSelectionPreview(counter SelectionCounter, options ...PreviewOption) *SelectionPreview {
	p := &SelectionPreview{
		counter: counter,
		cache:   NewPreviewCache(time.Minute),
		theme:   types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RenderHTML returns chart markup for the current selection counts.
func (p *SelectionPreview) RenderHTML() (string, error) {
	counts := map[string]int{}
	if p.counter != nil {
		counts = p.counter.CountsByTarget()
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	renderFn := func() (string, error) {
		return p.render(labels, counts)
	}
	if p.cache != nil {
		return p.cache.GetOrRender(countsHash(counts), renderFn)
	}
	return renderFn()
}

func (p *SelectionPreview) render(labels []string, counts map[string]int) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  p.theme,
			Width:  "100%",
			Height: previewChartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Selection activity",
			Subtitle: "Published selections per target",
		}),
	)
	bar.SetXAxis(labels)
	data := make([]opts.BarData, 0, len(labels))
	for _, label := range labels {
		data = append(data, opts.BarData{Value: counts[label]})
	}
	bar.AddSeries("selections", data)
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// countsHash returns a deterministic hash for the counts map.
func countsHash(counts map[string]int) string {
	data, err := json.Marshal(counts)
	if err != nil {
		return "unhashed"
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
