// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/ocms-admin/internal/util"
)

// DefaultLookupURL is the public address service queried when a request
// arrives from a private network.
const DefaultLookupURL = "https://api.ipify.org?format=json"

// ErrNoAddress is returned when no public address could be determined.
var ErrNoAddress = errors.New("no public address")

// Resolver returns the public address of this host as seen from outside.
type Resolver interface {
	PublicIP(ctx context.Context) (string, error)
}

// LookupResolver queries an ipify-compatible service. It accepts either a
// JSON body {"ip": "..."} or a bare address.
type LookupResolver struct {
	url    string
	client *http.Client
}

// NewLookupResolver creates a resolver for url. A nil client gets one that
// refuses to dial private addresses.
func NewLookupResolver(url string, client *http.Client) (*LookupResolver, error) {
	if url == "" {
		url = DefaultLookupURL
	}
	if err := util.ValidateServiceURL(url); err != nil {
		return nil, fmt.Errorf("IP lookup URL: %w", err)
	}
	if client == nil {
		dialer := &net.Dialer{Timeout: 5 * time.Second}
		client = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext:         util.SSRFSafeDialContext(dialer),
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	return &LookupResolver{url: url, client: client}, nil
}

// PublicIP fetches and parses the address.
func (r *LookupResolver) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("IP lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("IP lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("IP lookup: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	var payload struct {
		IP string `json:"ip"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.IP != "" {
		ip = payload.IP
	}

	if net.ParseIP(ip) == nil {
		return "", ErrNoAddress
	}
	return ip, nil
}

// StaticResolver always returns the same address.
type StaticResolver string

// PublicIP returns the address, or ErrNoAddress when it is empty.
func (s StaticResolver) PublicIP(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoAddress
	}
	return string(s), nil
}
