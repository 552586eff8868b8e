// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"time"
)

// timeNow is a variable so it can be mocked in tests.
var timeNow = time.Now

// GenerateSalt returns a random hex salt for visitor keys.
func GenerateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}

// VisitorKey derives the daily deduplication key for an address. The same
// address on the same UTC day always yields the same key.
func VisitorKey(salt, ip, date string) string {
	sum := sha256.Sum256([]byte(salt + ip + date))
	return hex.EncodeToString(sum[:])
}

// anonymizeIP masks the IP address for privacy.
// For IPv4: zeros the last octet (e.g., 192.168.1.100 -> 192.168.1.0)
// For IPv6: zeros the last 80 bits
func anonymizeIP(ip string) string {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}

	if ipv4 := parsedIP.To4(); ipv4 != nil {
		ipv4[3] = 0
		return ipv4.String()
	}

	ipv6 := parsedIP.To16()
	if ipv6 == nil {
		return ""
	}
	for i := 6; i < 16; i++ {
		ipv6[i] = 0
	}
	return ipv6.String()
}
