package game

import "github.com/korrin/meago/internal/blaze/tdf"

// AttrMap is an ordered string→string attribute map. Wire encoding and
// matchmaking both depend on stable iteration order, so insertion order is
// preserved; overwriting a key keeps its original position.
type AttrMap struct {
	keys   []string
	values map[string]string
}

func NewAttrMap() *AttrMap {
	return &AttrMap{values: make(map[string]string)}
}

// AttrMapFrom builds a map from parallel key/value slices in order.
func AttrMapFrom(keys, values []string) *AttrMap {
	m := NewAttrMap()
	for i, k := range keys {
		m.Set(k, values[i])
	}
	return m
}

// Get returns the value for key and whether it is present.
func (m *AttrMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set inserts or overwrites key.
func (m *AttrMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Merge applies every entry of other onto m: new keys append, existing keys
// are overwritten in place.
func (m *AttrMap) Merge(other *AttrMap) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}

// Len returns the number of entries.
func (m *AttrMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is owned by the map.
func (m *AttrMap) Keys() []string {
	return m.keys
}

// Each calls fn for every entry in insertion order.
func (m *AttrMap) Each(fn func(key, value string)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns an independent copy preserving order.
func (m *AttrMap) Clone() *AttrMap {
	out := NewAttrMap()
	out.Merge(m)
	return out
}

// Encode writes the map as a tagged string→string TDF map.
func (m *AttrMap) Encode(w *tdf.Writer, label string) {
	w.TagMap(label, tdf.TypeString, tdf.TypeString, m.Len())
	for _, k := range m.keys {
		w.WriteString(k)
		w.WriteString(m.values[k])
	}
}

// DecodeAttrMap reads a tagged string→string TDF map preserving wire order.
func DecodeAttrMap(r *tdf.Reader, label string) (*AttrMap, error) {
	keys, values, err := r.TagStringMap(label)
	if err != nil {
		return nil, err
	}
	return AttrMapFrom(keys, values), nil
}
