package facet

// Store holds the current selection for every facet of one panel. It is the
// single writer for facet state; mutual exclusion between a range facet and
// its linked preset is enforced here so no caller can get them both active.
//
// Mutations never fail. Unknown facet names and kind mismatches are ignored,
// out-of-range values (inverted ranges and the like) are accepted as-is.
type Store struct {
	schema Schema
	values map[string]Value
}

func NewStore(schema Schema) *Store {
	values := make(map[string]Value, len(schema))
	for _, def := range schema {
		values[def.Name] = emptyValue(def.Kind)
	}
	return &Store{schema: schema, values: values}
}

func (s *Store) Schema() Schema {
	return s.schema
}

func (s *Store) Get(name string) Value {
	return s.values[name]
}

// Set replaces the value of the named facet. Setting a non-empty range
// clears its linked preset; setting a non-empty preset clears the range
// linked to it. Last writer wins.
func (s *Store) Set(name string, value Value) {
	def, ok := s.schema.Find(name)
	if !ok || value == nil || value.Kind() != def.Kind {
		return
	}
	s.values[name] = value
	if value.Empty() {
		return
	}
	if def.LinkedTo != "" {
		s.Clear(def.LinkedTo)
	}
	if rangeDef, ok := s.schema.presetOf(name); ok {
		s.Clear(rangeDef.Name)
	}
}

// Clear resets one facet to its empty variant.
func (s *Store) Clear(name string) {
	def, ok := s.schema.Find(name)
	if !ok {
		return
	}
	s.values[name] = emptyValue(def.Kind)
}

// ClearAll resets every facet to its empty variant.
func (s *Store) ClearAll() {
	for _, def := range s.schema {
		s.values[def.Name] = emptyValue(def.Kind)
	}
}

// SetBool flips one option of a BooleanSet facet without touching the rest.
func (s *Store) SetBool(name, option string, on bool) {
	def, ok := s.schema.Find(name)
	if !ok || def.Kind != KindBooleanSet {
		return
	}
	current, _ := s.values[name].(BoolSet)
	next := make(BoolSet, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[option] = on
	s.Set(name, next)
}

// AppendTag appends one value to a TagList facet, ignoring duplicates.
func (s *Store) AppendTag(name, value string) {
	def, ok := s.schema.Find(name)
	if !ok || def.Kind != KindTagList || value == "" {
		return
	}
	current, _ := s.values[name].(TagList)
	for _, v := range current {
		if v == value {
			return
		}
	}
	next := make(TagList, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, value)
	s.Set(name, next)
}

// RemoveTag removes the first occurrence of value from a TagList facet.
func (s *Store) RemoveTag(name, value string) {
	current, ok := s.values[name].(TagList)
	if !ok {
		return
	}
	next := make(TagList, 0, len(current))
	removed := false
	for _, v := range current {
		if !removed && v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	s.values[name] = next
}

// Clone returns a snapshot copy of the store. Mutations replace values
// instead of editing them in place, so the copy can be read while the
// original keeps changing.
func (s *Store) Clone() *Store {
	values := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return &Store{schema: s.schema, values: values}
}

// Empty reports whether every facet is in its cleared state.
func (s *Store) Empty() bool {
	for _, v := range s.values {
		if !v.Empty() {
			return false
		}
	}
	return true
}
