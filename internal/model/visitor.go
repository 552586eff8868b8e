// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// CollectionVisitors holds one record per visitor per day.
const CollectionVisitors = "visitors"

// Visitor is an item in the visitors collection, keyed by the daily
// deduplication key.
type Visitor struct {
	Key       string    `json:"key"`
	IP        string    `json:"ip"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	Country   string    `json:"country"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
}

// VisitorFromFields decodes a stored record.
func VisitorFromFields(key string, f Fields) Visitor {
	return Visitor{
		Key:       key,
		IP:        str(f, "ip"),
		Date:      str(f, "date"),
		Timestamp: timestamp(f, "timestamp"),
		Country:   str(f, "country"),
		Browser:   str(f, "browser"),
		OS:        str(f, "os"),
		Device:    str(f, "device"),
	}
}

// Fields encodes the visit for storage.
func (v Visitor) Fields() Fields {
	return Fields{
		"ip":        v.IP,
		"date":      v.Date,
		"timestamp": formatTime(v.Timestamp),
		"country":   v.Country,
		"browser":   v.Browser,
		"os":        v.OS,
		"device":    v.Device,
	}
}
