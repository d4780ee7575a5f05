package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var numberCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "₹", "")

// ParseNumber coerces a cell to a float. Blank or unparseable cells yield 0;
// ok is false only for a non-blank cell that could not be parsed.
func ParseNumber(s string) (v float64, ok bool) {
	s = numberCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// spreadsheet serial day 0
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31.
const maxSerial = 2958465

// Day-first layouts are tried before month-first ones; the month-first
// fallback only wins when the day-first reading is impossible (e.g. 12/31/2025).
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2-1-2006",
	"02-01-06",
	"02/01/06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
}

// ParseDate coerces a cell to a calendar day at UTC midnight. It accepts ISO
// strings, day-first locale strings and spreadsheet serial numbers.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxSerial || math.IsNaN(serial) {
			return time.Time{}, false
		}
		t := excelEpoch.Add(time.Duration(serial * 86400 * float64(time.Second)))
		return startOfDay(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return startOfDay(t), true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
