package core

// aggregate.go counts records per distinct field value.
//
// Missing-field policy: a record whose header lacks the field is left out of
// the aggregate and counted in Missing. A present but empty value is a real
// value and is counted under "".

// Fields aggregated by the dashboard.
const (
	DivisionField  = ColDivision
	ClassroomField = ColClassroom
)

// Pair is one name/value entry of an Aggregate, the shape charts consume.
type Pair struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Aggregate maps each distinct value of Field to its record count.
// Entries keep the order in which values first appear in the input.
type Aggregate struct {
	Field   string
	keys    []string
	counts  map[string]int
	missing int
}

// AggregateBy counts the values of field across rows.
func AggregateBy(rows Rows, field string) Aggregate {
	agg := Aggregate{Field: field, counts: make(map[string]int)}
	for i := 0; i < rows.Len(); i++ {
		v, ok := rows.At(i).Get(field)
		if !ok {
			agg.missing++
			continue
		}
		if _, seen := agg.counts[v]; !seen {
			agg.keys = append(agg.keys, v)
		}
		agg.counts[v]++
	}
	return agg
}

// Count returns the number of records with value v.
func (a Aggregate) Count(v string) int { return a.counts[v] }

// Len returns the number of distinct values.
func (a Aggregate) Len() int { return len(a.keys) }

// Total returns the number of records counted.
func (a Aggregate) Total() int {
	total := 0
	for _, n := range a.counts {
		total += n
	}
	return total
}

// Missing returns the number of records excluded for lacking the field.
func (a Aggregate) Missing() int { return a.missing }

// Keys returns the distinct values in first-appearance order.
func (a Aggregate) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Pairs returns the entries as name/value pairs in first-appearance order.
func (a Aggregate) Pairs() []Pair {
	pairs := make([]Pair, len(a.keys))
	for i, k := range a.keys {
		pairs[i] = Pair{Name: k, Value: a.counts[k]}
	}
	return pairs
}

// Map returns the counts as a plain map.
func (a Aggregate) Map() map[string]int {
	m := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		m[k] = v
	}
	return m
}
