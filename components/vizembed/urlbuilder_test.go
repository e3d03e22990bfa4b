package vizembed

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() ViewConfig {
	return ViewConfig{
		VizURL:      "https://viz.example.com/views/Backlog/Overview",
		ShowTabs:    false,
		ShowToolbar: true,
		Height:      600,
	}
}

func TestBuildRejectsInsecureScheme(t *testing.T) {
	for _, raw := range []string{
		"http://viz.example.com/views/Backlog/Overview",
		"ftp://viz.example.com/views/Backlog/Overview",
		"",
	} {
		cfg := validConfig()
		cfg.VizURL = raw
		_, err := URLBuilder{}.Build(cfg, 800, FilterValue{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError for %q, got %v", raw, err)
		}
		if cfgErr.Reason != ReasonNonHTTPS {
			t.Fatalf("expected non-https reason for %q, got %s", raw, cfgErr.Reason)
		}
	}
}

func TestBuildRejectsFragmentViewPath(t *testing.T) {
	for _, raw := range []string{
		"https://viz.example.com/#/site/ops/views/Backlog/Overview",
		"HTTPS://viz.example.com/#/site/ops/views/Backlog/Overview",
		"https://VIZ.EXAMPLE.COM/#/site/ops/views/Backlog/Overview",
		"https://viz.example.com#/site/ops/views/Backlog/Overview",
	} {
		cfg := validConfig()
		cfg.VizURL = raw
		_, err := URLBuilder{}.Build(cfg, 800, FilterValue{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Reason != ReasonFragmentPath {
			t.Fatalf("expected fragment-path rejection for %q, got %v", raw, err)
		}
	}
}

func TestBuildRejectsUnparseableURL(t *testing.T) {
	cfg := validConfig()
	cfg.VizURL = "https://viz.example.com/views/Backlog\nOverview"
	_, err := URLBuilder{}.Build(cfg, 800, FilterValue{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for unparseable URL, got %v", err)
	}
	if strings.Contains(cfgErr.Message, "net/url") {
		t.Fatalf("expected human-readable message, got %q", cfgErr.Message)
	}
}

func TestBuildRejectsMismatchedFilterPair(t *testing.T) {
	for _, mutate := range []func(*ViewConfig){
		func(c *ViewConfig) { c.TabFilterField = "Distribution Center" },
		func(c *ViewConfig) { c.SourceFilterField = "Distribution_Center__c" },
	} {
		cfg := validConfig()
		cfg.FilterOnRecordID = true
		cfg.ObjectAPIName = "Account"
		cfg.RecordID = "001x"
		mutate(&cfg)
		_, err := URLBuilder{}.Build(cfg, 800, FilterValue{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Reason != ReasonMismatchedFilterPair {
			t.Fatalf("expected mismatched-filter-pair rejection, got %v", err)
		}
	}
}

func TestBuildAppendsSizeParameter(t *testing.T) {
	u, err := URLBuilder{}.Build(validConfig(), 800, FilterValue{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := u.Query().Get(":size"); got != "800,600" {
		t.Fatalf("expected size 800,600, got %q", got)
	}
}

func TestBuildAppendsRecordFilter(t *testing.T) {
	cfg := validConfig()
	cfg.FilterOnRecordID = true
	cfg.ObjectAPIName = "Account"
	cfg.RecordID = "001x"
	u, err := URLBuilder{}.Build(cfg, 800, FilterValue{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := u.Query().Get("Account ID"); got != "001x" {
		t.Fatalf("expected record filter, got %q", got)
	}
}

func TestBuildAppendsAdvancedFilterWhenDefined(t *testing.T) {
	cfg := validConfig()
	cfg.TabFilterField = "Distribution Center"
	cfg.SourceFilterField = "Distribution_Center__c"

	u, err := URLBuilder{}.Build(cfg, 800, FilterValue{Value: "DC-042", Defined: true})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := u.Query().Get("Distribution Center"); got != "DC-042" {
		t.Fatalf("expected advanced filter, got %q", got)
	}
}

func TestBuildSkipsAdvancedFilterWhenUndefinedOrEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.TabFilterField = "Distribution Center"
	cfg.SourceFilterField = "Distribution_Center__c"

	for _, filter := range []FilterValue{
		{},
		{Defined: true, Value: ""},
	} {
		u, err := URLBuilder{}.Build(cfg, 800, filter)
		if err != nil {
			t.Fatalf("Build returned error: %v", err)
		}
		if u.Query().Has("Distribution Center") {
			t.Fatalf("expected advanced filter omitted for %+v", filter)
		}
	}
}

func TestBuildParameterOrderIsDeterministic(t *testing.T) {
	cfg := validConfig()
	cfg.FilterOnRecordID = true
	cfg.ObjectAPIName = "Account"
	cfg.RecordID = "001x"
	cfg.TabFilterField = "Distribution Center"
	cfg.SourceFilterField = "Distribution_Center__c"

	u, err := URLBuilder{}.Build(cfg, 800, FilterValue{Value: "DC-042", Defined: true})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	sizeIdx := strings.Index(u.RawQuery, "size")
	recordIdx := strings.Index(u.RawQuery, "Account")
	filterIdx := strings.Index(u.RawQuery, "Distribution")
	if !(sizeIdx < recordIdx && recordIdx < filterIdx) {
		t.Fatalf("expected size, record, filter order; raw query %q", u.RawQuery)
	}
}

func TestApplyDeviceContextAppendsMobileParameters(t *testing.T) {
	u, err := URLBuilder{}.Build(validConfig(), 800, FilterValue{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	ApplyDeviceContext(u, DeviceContext{
		IsMobileHost: true,
		DeviceID:     "abc-123",
		DeviceName:   "SFMobileApp_iPhone",
	})
	query := u.Query()
	if query.Get(":use_rt") != "y" {
		t.Fatalf("expected realtime flag, got %q", query.Get(":use_rt"))
	}
	if query.Get(":client_id") != DefaultClientTag {
		t.Fatalf("expected client tag, got %q", query.Get(":client_id"))
	}
	if query.Get(":device_id") != "abc-123" || query.Get(":device_name") != "SFMobileApp_iPhone" {
		t.Fatalf("expected device parameters, got %q", u.RawQuery)
	}
}

func TestApplyDeviceContextIgnoresDesktop(t *testing.T) {
	u, err := URLBuilder{}.Build(validConfig(), 800, FilterValue{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	before := u.RawQuery
	ApplyDeviceContext(u, DeviceContext{})
	if u.RawQuery != before {
		t.Fatalf("expected no mobile parameters for desktop context")
	}
}
