// Package stats aggregates diary emotions over a recent time window.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/xaenox/maeum/internal/models"
)

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange accepts "week" (also the empty default) and "month".
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case "", RangeWeek:
		return RangeWeek, nil
	case RangeMonth:
		return RangeMonth, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Start returns the inclusive lower bound of the window ending at now.
func (r Range) Start(now time.Time) time.Time {
	if r == RangeMonth {
		return now.AddDate(0, -1, 0)
	}
	return now.AddDate(0, 0, -7)
}

type DaySeries struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

type Summary struct {
	Range   Range          `json:"range"`
	From    time.Time      `json:"from"`
	To      time.Time      `json:"to"`
	Entries int            `json:"entries"`
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
	Days    []DaySeries    `json:"days"`
}

type dated struct {
	date  string
	entry *models.DiaryEntry
}

// entryDay places an entry on its calendar day and reports whether that day
// is inside the window. Entries with a Date are compared by day, undated ones
// by creation time.
func entryDay(e *models.DiaryEntry, from, now time.Time) (string, bool) {
	if e.Date != "" {
		return e.Date, e.Date >= from.Format(models.DiaryDateLayout) &&
			e.Date <= now.Format(models.DiaryDateLayout)
	}
	if e.CreatedAt.Before(from) || e.CreatedAt.After(now) {
		return "", false
	}
	return e.CreatedAt.In(now.Location()).Format(models.DiaryDateLayout), true
}

// Compute counts every emotion string of the entries within the window. Day
// series are keyed by the entry's date and only track the known labels.
func Compute(entries []*models.DiaryEntry, r Range, now time.Time) Summary {
	from := r.Start(now)
	summary := Summary{
		Range:  r,
		From:   from,
		To:     now,
		Counts: make(map[string]int),
		Days:   []DaySeries{},
	}

	var inRange []dated
	for _, e := range entries {
		if date, ok := entryDay(e, from, now); ok {
			inRange = append(inRange, dated{date: date, entry: e})
		}
	}
	sort.SliceStable(inRange, func(i, j int) bool {
		if inRange[i].date != inRange[j].date {
			return inRange[i].date < inRange[j].date
		}
		return inRange[i].entry.CreatedAt.Before(inRange[j].entry.CreatedAt)
	})
	summary.Entries = len(inRange)

	days := make(map[string]map[string]int)
	var order []string
	for _, d := range inRange {
		day, ok := days[d.date]
		if !ok {
			day = make(map[string]int)
			for _, l := range models.Labels() {
				day[string(l)] = 0
			}
			days[d.date] = day
			order = append(order, d.date)
		}
		for _, emotion := range d.entry.Emotions {
			summary.Counts[emotion]++
			summary.Total++
			if models.EmotionLabel(emotion).Valid() {
				day[emotion]++
			}
		}
	}

	for _, date := range order {
		summary.Days = append(summary.Days, DaySeries{Date: date, Counts: days[date]})
	}
	return summary
}
