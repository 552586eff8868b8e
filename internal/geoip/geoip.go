// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor addresses to countries using a MaxMind
// GeoLite2-Country database.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/olegiv/ocms-admin/internal/util"
)

// CodeLocal is returned for private and loopback addresses.
const CodeLocal = "LOCAL"

// Database is a reloadable country lookup. A Database opened with an empty
// path is valid and resolves every public address to "".
type Database struct {
	mu      sync.RWMutex
	reader  *maxminddb.Reader
	path    string
	modTime time.Time
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at path. An empty path disables lookups.
func Open(path string) (*Database, error) {
	db := &Database{path: path}
	if path == "" {
		return db, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.load(); err != nil {
		return db, err
	}
	return db, nil
}

// load opens the file if it changed since the last load. Caller holds mu.
func (d *Database) load() error {
	info, err := os.Stat(d.path)
	if err != nil {
		return fmt.Errorf("GeoIP database: %w", err)
	}
	if d.reader != nil && info.ModTime().Equal(d.modTime) {
		return nil
	}

	reader, err := maxminddb.Open(d.path)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}

	if d.reader != nil {
		_ = d.reader.Close()
	}
	d.reader = reader
	d.modTime = info.ModTime()
	return nil
}

// Reload picks up a replaced database file. The previous reader stays in
// use if the new file cannot be opened.
func (d *Database) Reload() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return nil
	}
	return d.load()
}

// Enabled reports whether a database is loaded.
func (d *Database) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reader != nil
}

// Country returns the ISO country code for ip, CodeLocal for private
// addresses, or "" when unknown.
func (d *Database) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if util.IsPrivateIP(parsed) {
		return CodeLocal
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.reader == nil {
		return ""
	}

	var record countryRecord
	if err := d.reader.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Close releases the database.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	return err
}

var countryNames = map[string]string{
	CodeLocal: "Local Network",
	"US":      "United States",
	"GB":      "United Kingdom",
	"CA":      "Canada",
	"AU":      "Australia",
	"DE":      "Germany",
	"FR":      "France",
	"ES":      "Spain",
	"IT":      "Italy",
	"NL":      "Netherlands",
	"IE":      "Ireland",
	"IN":      "India",
	"NG":      "Nigeria",
	"GH":      "Ghana",
	"KE":      "Kenya",
	"ZA":      "South Africa",
	"BR":      "Brazil",
	"MX":      "Mexico",
	"JP":      "Japan",
	"CN":      "China",
	"SG":      "Singapore",
	"AE":      "United Arab Emirates",
}

// CountryName returns a display name for a country code. Unknown codes are
// returned unchanged; the empty code is "Unknown".
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}
