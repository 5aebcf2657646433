package query

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/leadpilot/filter-engine/pkg/facet"
)

func leadsSchema() facet.Schema {
	return facet.Schema{
		{Name: "industry", Kind: facet.KindBooleanSet, Param: "industry", Options: []string{"Tech", "Finance", "Retail"}},
		{Name: "visited-preset", Kind: facet.KindExclusiveChoice, Options: []string{"Last week", "Last 30 days", "Last 6 months", "All time"}},
		{Name: "visited", Kind: facet.KindDateRange, FromParam: "from_date", ToParam: "to_date", LinkedTo: "visited-preset"},
		{Name: "visit-time-preset", Kind: facet.KindExclusiveChoice, Options: []string{"Morning", "Afternoon", "Evening", "All day"}},
		{Name: "visit-time", Kind: facet.KindTimeRange, FromParam: "from_time", ToParam: "to_time", LinkedTo: "visit-time-preset"},
		{Name: "location", Kind: facet.KindTagList, Param: "location"},
		{Name: "search", Kind: facet.KindFreeText, Param: "search"},
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCompileCustomDateRangeDayBoundaries(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("visited", facet.DateRange{From: datePtr(2024, 1, 1), To: datePtr(2024, 1, 31)})

	params := Compile(s, time.Now())
	want := Params{
		{Key: "from_date", Value: "1704067200"},
		{Key: "to_date", Value: "1706745599"},
	}
	if !reflect.DeepEqual(params, want) {
		t.Fatalf("got %v want %v", params, want)
	}
}

func TestCompileDatePresets(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)
	endOfToday := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC).Unix()

	cases := []struct {
		preset   string
		wantFrom int64
		noFrom   bool
	}{
		{preset: "Last week", wantFrom: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC).Unix()},
		{preset: "Last 30 days", wantFrom: time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC).Unix()},
		{preset: "Last 6 months", wantFrom: time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC).Unix()},
		{preset: "All time", noFrom: true},
	}

	for _, tc := range cases {
		s := facet.NewStore(leadsSchema())
		s.Set("visited-preset", facet.Choice(tc.preset))
		params := Compile(s, now)

		from, hasFrom := params.Get("from_date")
		to, hasTo := params.Get("to_date")
		if !hasTo || to != formatUnix(endOfToday) {
			t.Errorf("%s: to_date = %q", tc.preset, to)
		}
		if tc.noFrom {
			if hasFrom {
				t.Errorf("%s: unexpected from_date %q", tc.preset, from)
			}
			continue
		}
		if !hasFrom || from != formatUnix(tc.wantFrom) {
			t.Errorf("%s: from_date = %q want %d", tc.preset, from, tc.wantFrom)
		}
	}
}

func formatUnix(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestCompileTimePresets(t *testing.T) {
	cases := []struct {
		preset string
		from   string
		to     string
	}{
		{"Morning", "00:00", "11:00"},
		{"Afternoon", "11:00", "17:00"},
		{"Evening", "17:00", "21:00"},
		{"All day", "00:00", "23:59"},
	}
	for _, tc := range cases {
		s := facet.NewStore(leadsSchema())
		s.Set("visit-time-preset", facet.Choice(tc.preset))
		params := Compile(s, time.Now())

		from, _ := params.Get("from_time")
		to, _ := params.Get("to_time")
		if from != tc.from || to != tc.to {
			t.Errorf("%s: got %s-%s want %s-%s", tc.preset, from, to, tc.from, tc.to)
		}
	}
}

func TestCompileCustomTimeRangePassesThrough(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("visit-time", facet.TimeRange{From: "08:15", To: "12:45"})

	params := Compile(s, time.Now())
	from, _ := params.Get("from_time")
	to, _ := params.Get("to_time")
	if from != "08:15" || to != "12:45" {
		t.Fatalf("got %s-%s", from, to)
	}
}

func TestCompileBooleanSetCommaJoined(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("industry", facet.BoolSet{"Retail": true, "Tech": true, "Finance": false})

	params := Compile(s, time.Now())
	got, ok := params.Get("industry")
	if !ok || got != "Tech,Retail" {
		t.Fatalf("got %q, want enumeration-ordered join", got)
	}
}

func TestCompileOmitsEmptyFacets(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("search", facet.FreeText("   "))

	if params := Compile(s, time.Now()); len(params) != 0 {
		t.Fatalf("blank facets must be omitted, got %v", params)
	}
}

func TestCompileDeterministic(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("industry", facet.BoolSet{"Tech": true})
	s.Set("visited-preset", facet.Choice("Last week"))
	s.AppendTag("location", "Austin, TX")
	s.AppendTag("location", "Boston, MA")
	s.Set("search", facet.FreeText("acme"))

	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)
	first := Compile(s, now)
	second := Compile(s, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compile not deterministic: %v vs %v", first, second)
	}
	if first.Encode() != second.Encode() {
		t.Fatal("encoded form not deterministic")
	}
}

func TestCompileDoesNotMutateStore(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.Set("visited-preset", facet.Choice("Last week"))
	before := s.Tags()

	Compile(s, time.Now())
	after := s.Tags()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed: %v vs %v", before, after)
	}
}

func TestCompileTagListCommaJoined(t *testing.T) {
	s := facet.NewStore(leadsSchema())
	s.AppendTag("location", "Austin, TX")
	s.AppendTag("location", "Boston, MA")

	params := Compile(s, time.Now())
	got, _ := params.Get("location")
	if got != "Austin, TX,Boston, MA" {
		t.Fatalf("got %q", got)
	}
}
