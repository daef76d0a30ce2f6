package data

// FilterValue constrains one activity attribute. Negate flips the
// comparison, expressing the {"$ne": v} form of the descriptor syntax.
type FilterValue struct {
	Value  string
	Negate bool
}

// Ne builds a negated filter value.
func Ne(v string) FilterValue {
	return FilterValue{Value: v, Negate: true}
}

// Eq builds a direct-match filter value.
func Eq(v string) FilterValue {
	return FilterValue{Value: v}
}

// ActivityDescriptor matches activity events by name plus attribute
// filters. A missing attribute fails a direct match and passes a negated
// one.
type ActivityDescriptor struct {
	ActivityName string
	Filter       map[string]FilterValue
	ProgressKey  string
}

// Matches reports whether an activity with the given name and attributes
// satisfies the descriptor.
func (d *ActivityDescriptor) Matches(name string, attrs map[string]string) bool {
	if name != d.ActivityName {
		return false
	}
	for key, want := range d.Filter {
		got, ok := attrs[key]
		if want.Negate {
			if ok && got == want.Value {
				return false
			}
			continue
		}
		if !ok || got != want.Value {
			return false
		}
	}
	return true
}

// Progress extracts the descriptor's progress count from the attributes,
// defaulting to 1 when the key is absent or not numeric.
func (d *ActivityDescriptor) Progress(attrs map[string]string) uint32 {
	key := d.ProgressKey
	if key == "" {
		key = "count"
	}
	v, ok := attrs[key]
	if !ok {
		return 1
	}
	var n uint32
	for _, c := range v {
		if c < '0' || c > '9' {
			return 1
		}
		n = n*10 + uint32(c-'0')
	}
	if v == "" {
		return 1
	}
	return n
}
