// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"sort"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
)

// Analytics ranges.
const (
	Range7Days  = "7d"
	Range30Days = "30d"
	RangeAll    = "all"
)

// DailyCount is the number of unique visitors on one day.
type DailyCount struct {
	Date     string `json:"date"`
	Visitors int    `json:"visitors"`
}

// Breakdown counts visitors per value of one attribute.
type Breakdown map[string]int

// Summary is the analytics page payload.
type Summary struct {
	Range     string       `json:"range"`
	Total     int          `json:"total"`
	Daily     []DailyCount `json:"daily"`
	Countries Breakdown    `json:"countries"`
	Browsers  Breakdown    `json:"browsers"`
	Devices   Breakdown    `json:"devices"`
}

// ValidRange reports whether r is a known analytics range.
func ValidRange(r string) bool {
	return r == Range7Days || r == Range30Days || r == RangeAll
}

// Summarize builds the report for visitors within rng, ending today. The
// 7d and 30d series include every day of the window, zero-filled.
func Summarize(visitors []model.Visitor, rng string, now time.Time) Summary {
	if !ValidRange(rng) {
		rng = Range30Days
	}
	today := now.UTC().Format(model.DateLayout)

	var from string
	switch rng {
	case Range7Days:
		from = now.UTC().AddDate(0, 0, -6).Format(model.DateLayout)
	case Range30Days:
		from = now.UTC().AddDate(0, 0, -29).Format(model.DateLayout)
	}

	s := Summary{
		Range:     rng,
		Countries: Breakdown{},
		Browsers:  Breakdown{},
		Devices:   Breakdown{},
	}

	perDay := map[string]int{}
	for _, v := range visitors {
		if v.Date == "" || v.Date > today || (from != "" && v.Date < from) {
			continue
		}
		perDay[v.Date]++
		s.Total++
		s.Countries[orUnknown(v.Country)]++
		s.Browsers[orUnknown(v.Browser)]++
		s.Devices[orUnknown(v.Device)]++
	}

	if from != "" {
		start, _ := time.Parse(model.DateLayout, from)
		for d := start; d.Format(model.DateLayout) <= today; d = d.AddDate(0, 0, 1) {
			date := d.Format(model.DateLayout)
			s.Daily = append(s.Daily, DailyCount{Date: date, Visitors: perDay[date]})
		}
		return s
	}

	s.Daily = make([]DailyCount, 0, len(perDay))
	for date, n := range perDay {
		s.Daily = append(s.Daily, DailyCount{Date: date, Visitors: n})
	}
	sort.Slice(s.Daily, func(i, j int) bool { return s.Daily[i].Date < s.Daily[j].Date })
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
