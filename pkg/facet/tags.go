package facet

import "fmt"

// Tag is a removable, human-readable summary of one active facet
// contribution. Tags are derived, never stored; the projection is pure and
// stable by schema declaration order.
type Tag struct {
	Facet     string `json:"facet"`
	Label     string `json:"label"`
	Deletable bool   `json:"deletable"`
}

const tagDateFormat = "2 Jan 2006"

// Tags projects the current selection into the chip list. BooleanSet emits
// one tag per selected option in enumeration order, ranges emit a single
// synthetic tag only when both bounds are present.
func (s *Store) Tags() []Tag {
	tags := make([]Tag, 0, len(s.schema))
	for _, def := range s.schema {
		value := s.values[def.Name]
		if value == nil || value.Empty() {
			continue
		}
		switch v := value.(type) {
		case BoolSet:
			for _, option := range def.Options {
				if v[option] {
					tags = append(tags, Tag{Facet: def.Name, Label: option, Deletable: true})
				}
			}
		case Choice:
			tags = append(tags, Tag{Facet: def.Name, Label: string(v), Deletable: true})
		case DateRange:
			if v.Complete() {
				label := fmt.Sprintf("From %s to %s", v.From.Format(tagDateFormat), v.To.Format(tagDateFormat))
				tags = append(tags, Tag{Facet: def.Name, Label: label, Deletable: true})
			}
		case TimeRange:
			if v.Complete() {
				label := fmt.Sprintf("From %s to %s", v.From, v.To)
				tags = append(tags, Tag{Facet: def.Name, Label: label, Deletable: true})
			}
		case TagList:
			for _, entry := range v {
				tags = append(tags, Tag{Facet: def.Name, Label: entry, Deletable: true})
			}
		case FreeText:
			tags = append(tags, Tag{Facet: def.Name, Label: string(v), Deletable: true})
		}
	}
	return tags
}

// DeleteTag removes exactly the contribution behind one tag. A BooleanSet
// tag flips that option off, a range tag clears both bounds.
func (s *Store) DeleteTag(tag Tag) {
	def, ok := s.schema.Find(tag.Facet)
	if !ok {
		return
	}
	switch def.Kind {
	case KindBooleanSet:
		s.SetBool(def.Name, tag.Label, false)
	case KindTagList:
		s.RemoveTag(def.Name, tag.Label)
	default:
		s.Clear(def.Name)
	}
}
