package headers

// entry holds every value seen for one header name, in insertion order.
type entry struct {
	name   Name
	values []string
}

// Map is an ordered header multimap: insertion order is preserved both
// within a name (duplicate inserts append) and across distinct names, so a
// parsed Map can be re-serialized byte-for-byte modulo header-name case
// normalization (spec.md §8's round-trip property). A plain Go map cannot
// offer that second guarantee, which is why this type exists instead of
// `map[Name][]string` (the shape the teacher's internal/headers.Headers
// uses for its single-value-per-name, order-oblivious case).
type Map struct {
	entries []entry
	index   map[Name]int
}

// NewMap returns an empty header map.
func NewMap() *Map {
	return &Map{index: make(map[Name]int)}
}

// Add appends value under name, creating the entry if this is the first
// value seen for that name. Empty values are accepted verbatim.
func (m *Map) Add(name Name, value string) {
	if i, ok := m.index[name]; ok {
		m.entries[i].values = append(m.entries[i].values, value)
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, entry{name: name, values: []string{value}})
}

// Values returns every value recorded for name, in insertion order, or nil
// if name was never seen.
func (m *Map) Values(name Name) []string {
	if i, ok := m.index[name]; ok {
		return m.entries[i].values
	}
	return nil
}

// Get returns the first value recorded for name, and whether it exists.
func (m *Map) Get(name Name) (string, bool) {
	vs := m.Values(name)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// GetString is a convenience wrapper over Get+NewName for callers holding a
// raw name string rather than an interned Name.
func (m *Map) GetString(name string) (string, bool) {
	return m.Get(NewName([]byte(name)))
}

// Len reports the number of distinct header names recorded.
func (m *Map) Len() int {
	return len(m.entries)
}

// Range calls fn once per (name, value) pair in overall insertion order,
// exactly as they would be re-serialized on the wire.
func (m *Map) Range(fn func(name Name, value string)) {
	for _, e := range m.entries {
		for _, v := range e.values {
			fn(e.name, v)
		}
	}
}
