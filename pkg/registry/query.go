package registry

import "strings"

// Predicate selects records during a scan.
type Predicate func(Record) bool

// NameEquals matches records whose name is exactly name.
func NameEquals(name string) Predicate {
	return func(r Record) bool { return r.Name == name }
}

// DescriptionContains matches records whose description contains sub.
// The empty string matches every record.
func DescriptionContains(sub string) Predicate {
	return func(r Record) bool { return strings.Contains(r.Description, sub) }
}

// CreatedBy matches records owned by id.
func CreatedBy(id Identity) Predicate {
	return func(r Record) bool { return r.CreatedBy == id }
}

// Pattern matches records whose name or description contains sub.
func Pattern(sub string) Predicate {
	return func(r Record) bool {
		return strings.Contains(r.Name, sub) || strings.Contains(r.Description, sub)
	}
}

// filter copies matching records in store order. Never returns nil.
func filter(recs []Record, p Predicate) []Record {
	out := make([]Record, 0)
	for _, r := range recs {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}
