package vizembed

import (
	"fmt"
	"net/url"
	"strings"
)

// Reasons carried by ConfigError.
const (
	ReasonNonHTTPS             = "non-https"
	ReasonFragmentPath         = "fragment-path"
	ReasonMismatchedFilterPair = "mismatched-filter-pair"
)

// DefaultClientTag identifies this embed integration to the visualization
// server when mobile parameters are appended.
const DefaultClientTag = "TableauVizLWC"

// Query parameter names understood by the visualization server.
const (
	paramSize       = ":size"
	paramUseRT      = ":use_rt"
	paramClientID   = ":client_id"
	paramDeviceID   = ":device_id"
	paramDeviceName = ":device_name"
)

// ConfigError reports a rejected view configuration. Reason is one of the
// Reason* constants; Message is safe to show to the end user.
type ConfigError struct {
	Reason  string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("vizembed: invalid config (%s): %s", e.Reason, e.Message)
}

func invalidConfig(reason, message string) error {
	return &ConfigError{Reason: reason, Message: message}
}

// URLBuilder derives a validated, fully parameterized embed URL from a view
// configuration. It is stateless; URLs are built fresh on every render pass
// because container dimensions may change between passes.
type URLBuilder struct{}

// Build validates cfg and produces the embed URL. Parameters are appended in
// a deterministic order: size, record-id filter, then the advanced filter.
// Mobile parameters are the caller's responsibility via ApplyDeviceContext.
func (URLBuilder) Build(cfg ViewConfig, containerWidthPx int, filter FilterValue) (*url.URL, error) {
	raw := strings.TrimSpace(cfg.VizURL)
	if raw == "" {
		return nil, invalidConfig(ReasonNonHTTPS, "visualization URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, invalidConfig(ReasonNonHTTPS, "visualization URL is not a valid URL")
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, invalidConfig(ReasonNonHTTPS, "visualization URL must use https")
	}
	// An in-app navigation link keeps the view path in the fragment
	// ("https://host/#/site/..."), which is not an embeddable form.
	if (u.Path == "" || u.Path == "/") && strings.HasPrefix(u.Fragment, "/") {
		return nil, invalidConfig(ReasonFragmentPath, "in-app navigation links cannot be embedded; use the share link instead")
	}
	if (cfg.TabFilterField == "") != (cfg.SourceFilterField == "") {
		return nil, invalidConfig(ReasonMismatchedFilterPair, "tab filter field and source filter field must be set together")
	}

	appendParam(u, paramSize, fmt.Sprintf("%d,%d", containerWidthPx, cfg.Height))
	if cfg.FilterOnRecordID && cfg.ObjectAPIName != "" {
		appendParam(u, cfg.ObjectAPIName+" ID", cfg.RecordID)
	}
	if cfg.HasAdvancedFilter() && filter.Defined && filter.Value != "" {
		appendParam(u, cfg.TabFilterField, filter.Value)
	}
	return u, nil
}

// ApplyDeviceContext appends mobile-host parameters after the base
// parameters. It is a no-op for non-mobile contexts.
func ApplyDeviceContext(u *url.URL, dc DeviceContext) {
	ApplyDeviceContextWithTag(u, dc, DefaultClientTag)
}

// ApplyDeviceContextWithTag is ApplyDeviceContext with an explicit client tag.
func ApplyDeviceContextWithTag(u *url.URL, dc DeviceContext, clientTag string) {
	if u == nil || !dc.IsMobileHost {
		return
	}
	if clientTag == "" {
		clientTag = DefaultClientTag
	}
	appendParam(u, paramUseRT, "y")
	appendParam(u, paramClientID, clientTag)
	appendParam(u, paramDeviceID, dc.DeviceID)
	appendParam(u, paramDeviceName, dc.DeviceName)
}

// appendParam preserves insertion order, unlike url.Values.Encode which
// re-sorts keys.
func appendParam(u *url.URL, key, value string) {
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	if u.RawQuery == "" {
		u.RawQuery = pair
		return
	}
	u.RawQuery += "&" + pair
}
