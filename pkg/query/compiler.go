package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/leadpilot/filter-engine/pkg/facet"
)

// Date preset labels. Selecting one computes the range from "now" at
// compile time instead of a stored custom range.
const (
	PresetLastWeek    = "Last week"
	PresetLast30Days  = "Last 30 days"
	PresetLast6Months = "Last 6 months"
	PresetAllTime     = "All time"
)

// Time-of-day preset labels and their fixed HH:MM pairs.
const (
	PresetMorning   = "Morning"
	PresetAfternoon = "Afternoon"
	PresetEvening   = "Evening"
	PresetAllDay    = "All day"
)

var timePresets = map[string][2]string{
	PresetMorning:   {"00:00", "11:00"},
	PresetAfternoon: {"11:00", "17:00"},
	PresetEvening:   {"17:00", "21:00"},
	PresetAllDay:    {"00:00", "23:59"},
}

// Compile flattens the selection into wire parameters, one facet at a time
// in schema order. It is pure: same store and same now always produce the
// same parameters, and the store is never mutated.
func Compile(s *facet.Store, now time.Time) Params {
	params := make(Params, 0, 8)
	for _, def := range s.Schema() {
		value := s.Get(def.Name)
		if value == nil || value.Empty() {
			continue
		}
		switch v := value.(type) {
		case facet.BoolSet:
			if joined := joinSelected(def.Options, v); joined != "" {
				params = append(params, Param{Key: def.Param, Value: joined})
			}
		case facet.Choice:
			params = append(params, compileChoice(s, def, string(v), now)...)
		case facet.DateRange:
			if v.Complete() {
				params = append(params,
					Param{Key: def.FromParam, Value: strconv.FormatInt(startOfDay(*v.From).Unix(), 10)},
					Param{Key: def.ToParam, Value: strconv.FormatInt(endOfDay(*v.To).Unix(), 10)},
				)
			}
		case facet.TimeRange:
			if v.Complete() {
				params = append(params,
					Param{Key: def.FromParam, Value: v.From},
					Param{Key: def.ToParam, Value: v.To},
				)
			}
		case facet.TagList:
			params = append(params, Param{Key: def.Param, Value: strings.Join(v, ",")})
		case facet.FreeText:
			params = append(params, Param{Key: def.Param, Value: string(v)})
		}
	}
	return params
}

// compileChoice resolves a preset facet. A preset linked to a range facet
// compiles into that range's from/to parameters; a free-standing choice is
// passed through under its own parameter name.
func compileChoice(s *facet.Store, def facet.Definition, label string, now time.Time) Params {
	rangeDef, linked := rangeLinkedTo(s.Schema(), def.Name)
	if !linked {
		if def.Param == "" {
			return nil
		}
		return Params{{Key: def.Param, Value: label}}
	}
	switch rangeDef.Kind {
	case facet.KindDateRange:
		from, to, ok := datePresetBounds(label, now)
		if !ok {
			return nil
		}
		params := make(Params, 0, 2)
		if from != nil {
			params = append(params, Param{Key: rangeDef.FromParam, Value: strconv.FormatInt(from.Unix(), 10)})
		}
		params = append(params, Param{Key: rangeDef.ToParam, Value: strconv.FormatInt(to.Unix(), 10)})
		return params
	case facet.KindTimeRange:
		pair, ok := timePresets[label]
		if !ok {
			return nil
		}
		return Params{
			{Key: rangeDef.FromParam, Value: pair[0]},
			{Key: rangeDef.ToParam, Value: pair[1]},
		}
	}
	return nil
}

// datePresetBounds computes the day-boundary-truncated window for a date
// preset. All-time has no lower bound.
func datePresetBounds(label string, now time.Time) (*time.Time, time.Time, bool) {
	to := endOfDay(now)
	var from time.Time
	switch label {
	case PresetLastWeek:
		from = startOfDay(now.AddDate(0, 0, -7))
	case PresetLast30Days:
		from = startOfDay(now.AddDate(0, 0, -30))
	case PresetLast6Months:
		from = startOfDay(now.AddDate(0, -6, 0))
	case PresetAllTime:
		return nil, to, true
	default:
		return nil, time.Time{}, false
	}
	return &from, to, true
}

func rangeLinkedTo(schema facet.Schema, presetName string) (facet.Definition, bool) {
	for _, def := range schema {
		if def.LinkedTo == presetName {
			return def, true
		}
	}
	return facet.Definition{}, false
}

func joinSelected(options []string, set facet.BoolSet) string {
	selected := make([]string, 0, len(options))
	for _, option := range options {
		if set[option] {
			selected = append(selected, option)
		}
	}
	return strings.Join(selected, ",")
}

// startOfDay truncates to 00:00:00 UTC of the instant's UTC day.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfDay truncates to 23:59:59 UTC of the instant's UTC day.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
