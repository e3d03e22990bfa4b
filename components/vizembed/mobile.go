package vizembed

import (
	"regexp"

	"github.com/google/uuid"
)

// mobileSDKMarker is present in the user agent whenever the host page runs
// inside the Salesforce mobile container.
const mobileSDKMarker = "SalesforceMobileSDK"

const defaultDeviceName = "SFMobileApp"

var (
	deviceIDPattern     = regexp.MustCompile(`uid_([\w-]+)`)
	deviceFamilyPattern = regexp.MustCompile(`iPhone|Android|iPad`)
	mobileSDKPattern    = regexp.MustCompile(regexp.QuoteMeta(mobileSDKMarker))
)

// DetectMobileContext inspects a user agent and returns the mobile device
// context when the host is the mobile container. The second return is false
// for desktop hosts.
//
// When the agent carries no uid_ token a random RFC 4122 v4 identifier is
// generated instead; the id is stable only for the duration of the render
// pass that requested it.
func DetectMobileContext(userAgent string) (DeviceContext, bool) {
	if !mobileSDKPattern.MatchString(userAgent) {
		return DeviceContext{}, false
	}
	dc := DeviceContext{IsMobileHost: true}
	if m := deviceIDPattern.FindStringSubmatch(userAgent); len(m) == 2 {
		dc.DeviceID = m[1]
	} else {
		dc.DeviceID = uuid.NewString()
	}
	dc.DeviceName = defaultDeviceName
	if family := deviceFamilyPattern.FindString(userAgent); family != "" {
		dc.DeviceName = defaultDeviceName + "_" + family
	}
	return dc, true
}
