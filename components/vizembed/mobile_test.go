package vizembed

import (
	"regexp"
	"testing"
)

var uuidV4Shape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestDetectMobileContextDesktop(t *testing.T) {
	dc, mobile := DetectMobileContext("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")
	if mobile {
		t.Fatalf("expected desktop host, got %+v", dc)
	}
	if dc.IsMobileHost || dc.DeviceID != "" || dc.DeviceName != "" {
		t.Fatalf("expected zero context for desktop, got %+v", dc)
	}
}

func TestDetectMobileContextExtractsDeviceID(t *testing.T) {
	dc, mobile := DetectMobileContext("SalesforceMobileSDK/11.0 iPhone uid_A1B2-c3d4 Mobile/20G81")
	if !mobile {
		t.Fatal("expected mobile host")
	}
	if dc.DeviceID != "A1B2-c3d4" {
		t.Fatalf("expected extracted device id, got %q", dc.DeviceID)
	}
	if dc.DeviceName != "SFMobileApp_iPhone" {
		t.Fatalf("expected iPhone device name, got %q", dc.DeviceName)
	}
}

func TestDetectMobileContextDeviceFamilies(t *testing.T) {
	cases := map[string]string{
		"SalesforceMobileSDK/11.0 Android 14 uid_x": "SFMobileApp_Android",
		"SalesforceMobileSDK/11.0 iPad uid_x":       "SFMobileApp_iPad",
		"SalesforceMobileSDK/11.0 uid_x":            "SFMobileApp",
	}
	for agent, want := range cases {
		dc, mobile := DetectMobileContext(agent)
		if !mobile {
			t.Fatalf("expected mobile host for %q", agent)
		}
		if dc.DeviceName != want {
			t.Fatalf("expected %q for %q, got %q", want, agent, dc.DeviceName)
		}
	}
}

func TestDetectMobileContextGeneratesRandomID(t *testing.T) {
	agent := "SalesforceMobileSDK/11.0 iPhone Mobile/20G81"
	first, _ := DetectMobileContext(agent)
	second, _ := DetectMobileContext(agent)
	if !uuidV4Shape.MatchString(first.DeviceID) {
		t.Fatalf("expected v4 uuid device id, got %q", first.DeviceID)
	}
	if first.DeviceID == second.DeviceID {
		t.Fatalf("expected distinct generated ids, got %q twice", first.DeviceID)
	}
}
