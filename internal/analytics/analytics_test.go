// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/testutil"
)

func setTime(t *testing.T, ts time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return ts }
	t.Cleanup(func() { timeNow = orig })
}

type fakeWriter struct {
	mu   sync.Mutex
	puts map[string]model.Visitor
	err  error
	done chan struct{}
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{puts: map[string]model.Visitor{}, done: make(chan struct{}, 4)}
}

func (f *fakeWriter) Put(_ context.Context, id string, v model.Visitor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.err != nil {
		return f.err
	}
	f.puts[id] = v
	return nil
}

type fakeGeo map[string]string

func (g fakeGeo) Country(ip string) string { return g[ip] }

func TestVisitorKey(t *testing.T) {
	a := VisitorKey("salt", "81.2.69.160", "2025-05-01")
	b := VisitorKey("salt", "81.2.69.160", "2025-05-01")
	if a != b {
		t.Errorf("same inputs produced %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}

	for _, other := range []string{
		VisitorKey("salt", "81.2.69.160", "2025-05-02"),
		VisitorKey("salt", "81.2.69.161", "2025-05-01"),
		VisitorKey("pepper", "81.2.69.160", "2025-05-01"),
	} {
		if other == a {
			t.Error("different inputs produced the same key")
		}
	}
}

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"203.0.113.77", "203.0.113.0"},
		{"2001:db8:1234:5678:9abc:def0:1234:5678", "2001:db8:1234::"},
		{"bogus", ""},
	}
	for _, tt := range tests {
		if got := anonymizeIP(tt.in); got != tt.want {
			t.Errorf("anonymizeIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		browser string
		device  string
	}{
		{
			name:    "desktop chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser: "Chrome",
			device:  DeviceDesktop,
		},
		{
			name:    "iphone safari",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1",
			browser: "Safari",
			device:  DeviceMobile,
		},
		{
			name:    "empty",
			ua:      "",
			browser: "Unknown",
			device:  DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseUserAgent(tt.ua)
			if got.Browser != tt.browser {
				t.Errorf("Browser = %q, want %q", got.Browser, tt.browser)
			}
			if got.Device != tt.device {
				t.Errorf("Device = %q, want %q", got.Device, tt.device)
			}
		})
	}
}

func TestTracker_PublicRequestAddress(t *testing.T) {
	setTime(t, time.Date(2025, 5, 1, 13, 0, 0, 0, time.UTC))
	w := newFakeWriter()
	tr := NewTracker(w, "salt",
		WithCountryLookup(fakeGeo{"81.2.69.160": "GB"}),
		WithLogger(testutil.TestLoggerSilent()))

	v, err := tr.Record(context.Background(), Hit{IP: "81.2.69.160", UserAgent: "curl/8.1.2"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if v.Key != VisitorKey("salt", "81.2.69.160", "2025-05-01") {
		t.Errorf("Key = %q", v.Key)
	}
	if v.IP != "81.2.69.0" {
		t.Errorf("IP = %q, want anonymized", v.IP)
	}
	if v.Date != "2025-05-01" || v.Country != "GB" {
		t.Errorf("Date/Country = %q/%q", v.Date, v.Country)
	}
	if _, ok := w.puts[v.Key]; !ok {
		t.Error("visitor not written under its key")
	}
}

func TestTracker_PrivateAddressUsesResolver(t *testing.T) {
	w := newFakeWriter()
	tr := NewTracker(w, "salt", WithResolver(StaticResolver("89.160.20.112")))

	v, err := tr.Record(context.Background(), Hit{IP: "10.0.0.8"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if v.IP != "89.160.20.0" {
		t.Errorf("IP = %q, want resolver address anonymized", v.IP)
	}

	noResolver := NewTracker(w, "salt")
	if _, err := noResolver.Record(context.Background(), Hit{IP: "127.0.0.1"}); !errors.Is(err, ErrNoAddress) {
		t.Errorf("error = %v, want ErrNoAddress", err)
	}
}

func TestTracker_TrackSwallowsErrors(t *testing.T) {
	w := newFakeWriter()
	w.err = errors.New("store down")
	tr := NewTracker(w, "salt", WithLogger(testutil.TestLoggerSilent()))

	tr.Track(context.Background(), Hit{IP: "81.2.69.160"})

	if len(w.puts) != 0 {
		t.Errorf("puts = %d, want 0", len(w.puts))
	}
}

func TestTracker_TrackAsync(t *testing.T) {
	w := newFakeWriter()
	tr := NewTracker(w, "salt", WithLogger(testutil.TestLoggerSilent()), WithTimeout(time.Second))

	tr.TrackAsync(Hit{IP: "81.2.69.160"})

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("TrackAsync did not write")
	}
}

func TestTracker_SameDayIsIdempotent(t *testing.T) {
	setTime(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	reg := collection.NewRegistry(docstore.NewSQLStore(db, docstore.WithLogger(testutil.TestLoggerSilent())))
	tr := NewTracker(reg.Visitors, "salt")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := tr.Record(ctx, Hit{IP: "81.2.69.160"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	n, err := reg.Visitors.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("visitors = %d, want 1", n)
	}

	setTime(t, time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC))
	if _, err := tr.Record(ctx, Hit{IP: "81.2.69.160"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if n, _ := reg.Visitors.Count(ctx); n != 2 {
		t.Errorf("visitors after next day = %d, want 2", n)
	}
}

func TestLookupResolver(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{"json", `{"ip":"198.51.100.7"}`, http.StatusOK, "198.51.100.7", false},
		{"plain", "198.51.100.8\n", http.StatusOK, "198.51.100.8", false},
		{"garbage", "hello", http.StatusOK, "", true},
		{"server error", "", http.StatusBadGateway, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r, err := NewLookupResolver(srv.URL, srv.Client())
			if err != nil {
				t.Fatalf("NewLookupResolver: %v", err)
			}
			got, err := r.PublicIP(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("PublicIP() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PublicIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLookupResolver_RejectsBadURL(t *testing.T) {
	if _, err := NewLookupResolver("ftp://example.com", nil); err == nil {
		t.Error("ftp URL accepted")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	visitors := []model.Visitor{
		{Key: "a", Date: "2025-05-10", Country: "US", Browser: "Chrome", Device: DeviceDesktop},
		{Key: "b", Date: "2025-05-10", Country: "GB", Browser: "Safari", Device: DeviceMobile},
		{Key: "c", Date: "2025-05-04", Country: "US"},
		{Key: "d", Date: "2025-04-01"},
		{Key: "e", Date: "2025-05-11"},
	}

	week := Summarize(visitors, Range7Days, now)
	if week.Total != 3 {
		t.Errorf("7d total = %d, want 3", week.Total)
	}
	if len(week.Daily) != 7 {
		t.Fatalf("7d days = %d, want 7", len(week.Daily))
	}
	if week.Daily[0] != (DailyCount{Date: "2025-05-04", Visitors: 1}) {
		t.Errorf("first day = %+v", week.Daily[0])
	}
	if week.Daily[6] != (DailyCount{Date: "2025-05-10", Visitors: 2}) {
		t.Errorf("last day = %+v", week.Daily[6])
	}
	if week.Countries["US"] != 2 || week.Browsers["Unknown"] != 1 {
		t.Errorf("breakdowns = %v %v", week.Countries, week.Browsers)
	}

	if month := Summarize(visitors, Range30Days, now); len(month.Daily) != 30 || month.Total != 3 {
		t.Errorf("30d = %d days, total %d", len(month.Daily), month.Total)
	}

	all := Summarize(visitors, RangeAll, now)
	if all.Total != 4 || len(all.Daily) != 3 || all.Daily[0].Date != "2025-04-01" {
		t.Errorf("all = %+v", all)
	}

	if got := Summarize(nil, "bogus", now).Range; got != Range30Days {
		t.Errorf("unknown range = %q, want 30d", got)
	}
}
