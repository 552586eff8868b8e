// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"github.com/mileusna/useragent"
)

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

type parsedUA struct {
	Browser string
	OS      string
	Device  string
}

// parseUserAgent extracts browser, OS, and device type from a user agent string.
func parseUserAgent(uaString string) parsedUA {
	ua := useragent.Parse(uaString)

	result := parsedUA{
		Browser: ua.Name,
		OS:      ua.OS,
	}

	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.Device = DeviceMobile
	case ua.Tablet:
		result.Device = DeviceTablet
	case ua.Bot:
		result.Device = DeviceBot
	default:
		result.Device = DeviceDesktop
	}

	return result
}
