package facet

import (
	"strings"
	"time"
)

// Value is one facet's current selection. Implementations are the closed set
// of variants below; Empty reports whether the facet is in its cleared state.
type Value interface {
	Kind() Kind
	Empty() bool
}

// BoolSet maps option label to selected. Only true entries matter.
type BoolSet map[string]bool

func (v BoolSet) Kind() Kind { return KindBooleanSet }

func (v BoolSet) Empty() bool {
	for _, on := range v {
		if on {
			return false
		}
	}
	return true
}

// Choice holds at most one selected label, empty string meaning none.
type Choice string

func (v Choice) Kind() Kind  { return KindExclusiveChoice }
func (v Choice) Empty() bool { return v == "" }

// DateRange holds optional start/end instants, inclusive day boundaries.
// Inverted ranges are accepted as-is.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

func (v DateRange) Kind() Kind  { return KindDateRange }
func (v DateRange) Empty() bool { return v.From == nil && v.To == nil }

// Complete reports whether both bounds are present. Partial ranges produce
// no tag and no query parameters.
func (v DateRange) Complete() bool { return v.From != nil && v.To != nil }

// TimeRange holds optional start/end time-of-day as HH:MM strings.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (v TimeRange) Kind() Kind     { return KindTimeRange }
func (v TimeRange) Empty() bool    { return v.From == "" && v.To == "" }
func (v TimeRange) Complete() bool { return v.From != "" && v.To != "" }

// TagList is an ordered sequence of free-form strings.
type TagList []string

func (v TagList) Kind() Kind  { return KindTagList }
func (v TagList) Empty() bool { return len(v) == 0 }

// FreeText is a single search string. Blank counts as empty.
type FreeText string

func (v FreeText) Kind() Kind  { return KindFreeText }
func (v FreeText) Empty() bool { return strings.TrimSpace(string(v)) == "" }

func emptyValue(kind Kind) Value {
	switch kind {
	case KindBooleanSet:
		return BoolSet{}
	case KindExclusiveChoice:
		return Choice("")
	case KindDateRange:
		return DateRange{}
	case KindTimeRange:
		return TimeRange{}
	case KindTagList:
		return TagList{}
	case KindFreeText:
		return FreeText("")
	}
	return nil
}
