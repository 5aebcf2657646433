package persistance

import (
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"

	"github.com/leadpilot/filter-engine/pkg/facet"
)

// Snapshot is the primitive-only projection of a facet store, keyed by facet
// name. Each facet serializes in its natural shape: sets as {label: bool},
// date ranges as {from,to} unix seconds, time ranges as {from,to} HH:MM,
// tag lists as arrays, choices and free text as strings. The schema decides
// how each entry is read back.
type Snapshot map[string]json.RawMessage

type dateRange struct {
	From *int64 `json:"from"`
	To   *int64 `json:"to"`
}

type timeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MarshalSnapshot serializes the non-empty facets of a store.
func MarshalSnapshot(s *facet.Store) ([]byte, error) {
	snapshot := make(Snapshot)
	for _, def := range s.Schema() {
		value := s.Get(def.Name)
		if value == nil || value.Empty() {
			continue
		}
		var native any
		switch v := value.(type) {
		case facet.BoolSet:
			set := make(map[string]bool, len(v))
			for label, on := range v {
				if on {
					set[label] = true
				}
			}
			native = set
		case facet.Choice:
			native = string(v)
		case facet.DateRange:
			native = dateRange{From: unixPtr(v.From), To: unixPtr(v.To)}
		case facet.TimeRange:
			native = timeRange{From: v.From, To: v.To}
		case facet.TagList:
			native = []string(v)
		case facet.FreeText:
			native = string(v)
		default:
			continue
		}
		raw, err := sonic.Marshal(native)
		if err != nil {
			return nil, err
		}
		snapshot[def.Name] = raw
	}
	return sonic.Marshal(snapshot)
}

// UnmarshalSnapshot restores a store from a serialized snapshot. Entries
// whose facet no longer exists, whose shape does not match the schema kind,
// or whose labels fell out of the current enumeration are dropped silently.
func UnmarshalSnapshot(data []byte, schema facet.Schema) (*facet.Store, error) {
	var snapshot Snapshot
	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	store := facet.NewStore(schema)
	// Ranges first so that a preset present in the same snapshot wins the
	// mutual-exclusion tie on restore.
	for _, rangePass := range [2]bool{true, false} {
		for _, def := range schema {
			isRange := def.Kind == facet.KindDateRange || def.Kind == facet.KindTimeRange
			if isRange != rangePass {
				continue
			}
			if raw, ok := snapshot[def.Name]; ok {
				restoreEntry(store, schema, def, raw)
			}
		}
	}
	return store, nil
}

// restoreEntry decodes one snapshot entry against its schema kind. Any shape
// mismatch drops the entry, never the whole snapshot.
func restoreEntry(store *facet.Store, schema facet.Schema, def facet.Definition, raw json.RawMessage) {
	switch def.Kind {
	case facet.KindBooleanSet:
		var stored map[string]bool
		if sonic.Unmarshal(raw, &stored) != nil {
			return
		}
		set := make(facet.BoolSet)
		for label, on := range stored {
			if on && schema.HasOption(def.Name, label) {
				set[label] = true
			}
		}
		store.Set(def.Name, set)
	case facet.KindExclusiveChoice:
		var choice string
		if sonic.Unmarshal(raw, &choice) != nil {
			return
		}
		if choice != "" && schema.HasOption(def.Name, choice) {
			store.Set(def.Name, facet.Choice(choice))
		}
	case facet.KindDateRange:
		var rng dateRange
		if sonic.Unmarshal(raw, &rng) != nil {
			return
		}
		store.Set(def.Name, facet.DateRange{From: timePtr(rng.From), To: timePtr(rng.To)})
	case facet.KindTimeRange:
		var rng timeRange
		if sonic.Unmarshal(raw, &rng) != nil {
			return
		}
		store.Set(def.Name, facet.TimeRange{From: rng.From, To: rng.To})
	case facet.KindTagList:
		var tags []string
		if sonic.Unmarshal(raw, &tags) != nil {
			return
		}
		store.Set(def.Name, facet.TagList(tags))
	case facet.KindFreeText:
		var text string
		if sonic.Unmarshal(raw, &text) != nil {
			return
		}
		store.Set(def.Name, facet.FreeText(text))
	}
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func timePtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}
