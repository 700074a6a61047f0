package answers

import "time"

// Column names appended to every persisted row.
const (
	ColumnRegisteredAt = "Fecha_Registro"
	TimestampLayout    = "2006-01-02 15:04:05"
)

// Set is an ordered question → answer mapping. Keys keep their first
// insertion position; writing an existing key overwrites in place.
type Set struct {
	keys   []string
	values map[string]Value
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{values: make(map[string]Value)}
}

// Put records an answer.
func (s *Set) Put(key string, value Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the answer for key.
func (s *Set) Get(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Text returns the stringified answer for key ("" when absent).
func (s *Set) Text(key string) string {
	v, _ := s.Get(key)
	return v.String()
}

// Has reports whether key was recorded.
func (s *Set) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes key.
func (s *Set) Delete(key string) {
	if s == nil {
		return
	}
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Len reports the number of answers.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		out.Put(k, s.values[k])
	}
	return out
}

// Row is the flattened, stringified projection persisted to a remote table.
type Row struct {
	Columns []string
	Values  []string
}

// Map returns column → value.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.Columns))
	for i, col := range r.Columns {
		if i < len(r.Values) {
			out[col] = r.Values[i]
		}
	}
	return out
}

// Row projects the set in insertion order and appends the registration
// timestamp column.
func (s *Set) Row(registeredAt time.Time) Row {
	row := Row{}
	for _, k := range s.Keys() {
		if k == ColumnRegisteredAt {
			continue
		}
		row.Columns = append(row.Columns, k)
		row.Values = append(row.Values, s.values[k].String())
	}
	row.Columns = append(row.Columns, ColumnRegisteredAt)
	row.Values = append(row.Values, registeredAt.Format(TimestampLayout))
	return row
}
