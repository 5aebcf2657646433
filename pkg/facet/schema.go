package facet

// Kind identifies the variant of a facet value.
type Kind uint8

const (
	KindBooleanSet Kind = iota
	KindExclusiveChoice
	KindDateRange
	KindTimeRange
	KindTagList
	KindFreeText
)

// Definition describes one filter dimension of a page. Declaration order in
// the Schema fixes both tag order and compile order.
type Definition struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Group string `json:"group,omitempty"`

	// Wire parameter name for scalar kinds (BooleanSet, ExclusiveChoice,
	// TagList, FreeText).
	Param string `json:"param,omitempty"`

	// Wire parameter names for range kinds (DateRange, TimeRange).
	FromParam string `json:"fromParam,omitempty"`
	ToParam   string `json:"toParam,omitempty"`

	// Closed enumeration for BooleanSet / ExclusiveChoice. Values outside
	// the enumeration never produce tags and are pruned on restore.
	Options []string `json:"options,omitempty"`

	// Name of the preset facet a DateRange/TimeRange is mutually
	// exclusive with. Setting one side clears the other.
	LinkedTo string `json:"linkedTo,omitempty"`
}

type Schema []Definition

func (s Schema) Find(name string) (Definition, bool) {
	for _, def := range s {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

func (s Schema) HasOption(name, option string) bool {
	def, ok := s.Find(name)
	if !ok {
		return false
	}
	for _, o := range def.Options {
		if o == option {
			return true
		}
	}
	return false
}

// presetOf returns the range facet linked to the given preset facet name, if
// any. The link is declared on the range side only.
func (s Schema) presetOf(name string) (Definition, bool) {
	for _, def := range s {
		if def.LinkedTo == name {
			return def, true
		}
	}
	return Definition{}, false
}
