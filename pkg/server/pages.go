package server

import (
	"github.com/leadpilot/filter-engine/pkg/facet"
	"github.com/leadpilot/filter-engine/pkg/panel"
	"github.com/leadpilot/filter-engine/pkg/query"
)

var datePresetOptions = []string{
	query.PresetLastWeek,
	query.PresetLast30Days,
	query.PresetLast6Months,
	query.PresetAllTime,
}

var timePresetOptions = []string{
	query.PresetMorning,
	query.PresetAfternoon,
	query.PresetEvening,
	query.PresetAllDay,
}

var industryOptions = []string{
	"Tech", "Finance", "Retail", "Healthcare", "Manufacturing", "Education", "Real Estate",
}

// Pages fixes one panel configuration per screen. The storage keys match
// what the front end has always used, so existing sessions keep their
// filters.
var Pages = map[string]panel.Config{
	"leads": {
		Entity:     "leads",
		StorageKey: "filters",
		Page:       "leads",
		Schema: facet.Schema{
			{Name: "industry", Kind: facet.KindBooleanSet, Group: "industry", Param: "industry", Options: industryOptions},
			{Name: "visited-preset", Kind: facet.KindExclusiveChoice, Group: "visited", Options: datePresetOptions},
			{Name: "visited", Kind: facet.KindDateRange, Group: "visited", FromParam: "from_date", ToParam: "to_date", LinkedTo: "visited-preset"},
			{Name: "visit-time-preset", Kind: facet.KindExclusiveChoice, Group: "visit-time", Options: timePresetOptions},
			{Name: "visit-time", Kind: facet.KindTimeRange, Group: "visit-time", FromParam: "from_time", ToParam: "to_time", LinkedTo: "visit-time-preset"},
			{Name: "location", Kind: facet.KindTagList, Group: "location", Param: "location"},
			{Name: "contact", Kind: facet.KindTagList, Group: "contact", Param: "contact"},
			{Name: "search", Kind: facet.KindFreeText, Group: "search", Param: "search"},
		},
	},
	"companies": {
		Entity:     "companies",
		StorageKey: "filters-company",
		Page:       "companies",
		Schema: facet.Schema{
			{Name: "industry", Kind: facet.KindBooleanSet, Group: "industry", Param: "industry", Options: industryOptions},
			{Name: "revenue", Kind: facet.KindBooleanSet, Group: "revenue", Param: "revenue", Options: []string{"<1M", "1M-10M", "10M-100M", ">100M"}},
			{Name: "size", Kind: facet.KindBooleanSet, Group: "size", Param: "company_size", Options: []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}},
			{Name: "visited-preset", Kind: facet.KindExclusiveChoice, Group: "visited", Options: datePresetOptions},
			{Name: "visited", Kind: facet.KindDateRange, Group: "visited", FromParam: "from_date", ToParam: "to_date", LinkedTo: "visited-preset"},
			{Name: "location", Kind: facet.KindTagList, Group: "location", Param: "location"},
			{Name: "search", Kind: facet.KindFreeText, Group: "search", Param: "search"},
		},
	},
	"employees": {
		Entity:     "company-employees",
		StorageKey: "filters-employee",
		Page:       "employees",
		Schema: facet.Schema{
			{Name: "seniority", Kind: facet.KindBooleanSet, Group: "seniority", Param: "seniority", Options: []string{"C-Level", "VP", "Director", "Manager", "Individual Contributor"}},
			{Name: "department", Kind: facet.KindBooleanSet, Group: "department", Param: "department", Options: []string{"Engineering", "Sales", "Marketing", "Finance", "Operations", "HR"}},
			{Name: "contact", Kind: facet.KindTagList, Group: "contact", Param: "contact"},
			{Name: "location", Kind: facet.KindTagList, Group: "location", Param: "location"},
			{Name: "search", Kind: facet.KindFreeText, Group: "search", Param: "search"},
		},
	},
	"data-sync": {
		Entity:     "data-sync",
		StorageKey: "filters_data_sync",
		Page:       "data-sync",
		Schema: facet.Schema{
			{Name: "status", Kind: facet.KindBooleanSet, Group: "status", Param: "status", Options: []string{"Synced", "Pending", "Failed"}},
			{Name: "synced-preset", Kind: facet.KindExclusiveChoice, Group: "synced", Options: datePresetOptions},
			{Name: "synced", Kind: facet.KindDateRange, Group: "synced", FromParam: "from_date", ToParam: "to_date", LinkedTo: "synced-preset"},
			{Name: "search", Kind: facet.KindFreeText, Group: "search", Param: "search"},
		},
	},
}

// suggestFacet maps an autocomplete field to the TagList facet a picked
// suggestion lands in.
var suggestFacet = map[string]string{
	"location": "location",
	"contact":  "contact",
}
