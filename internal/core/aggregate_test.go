package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregateBy_Duplicates(t *testing.T) {
	rs := buildSet([3]string{"1", "FY", "C1"}, [3]string{"1", "FY", "C1"})

	agg := AggregateBy(rs, DivisionField)
	if diff := cmp.Diff(map[string]int{"FY": 2}, agg.Map()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBy_FirstAppearanceOrder(t *testing.T) {
	rs := buildSet(
		[3]string{"1", "SY", "C2"},
		[3]string{"2", "FY", "C1"},
		[3]string{"3", "SY", "C3"},
		[3]string{"4", "TY", "C1"},
	)

	want := []Pair{{Name: "SY", Value: 2}, {Name: "FY", Value: 1}, {Name: "TY", Value: 1}}
	if diff := cmp.Diff(want, AggregateBy(rs, DivisionField).Pairs()); diff != "" {
		t.Errorf("Pairs() mismatch (-want +got):\n%s", diff)
	}

	wantRooms := []string{"C2", "C1", "C3"}
	if diff := cmp.Diff(wantRooms, AggregateBy(rs, ClassroomField).Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBy_SumEqualsSize(t *testing.T) {
	rs := buildSet(
		[3]string{"1", "SY", "C2"},
		[3]string{"2", "FY", "C1"},
		[3]string{"3", "SY", "C3"},
		[3]string{"4", "TY", "C1"},
		[3]string{"5", "FY", "C1"},
	)
	for _, term := range []string{"", "FY", "C1", "none"} {
		fs := Search(rs, term)
		for _, field := range []string{DivisionField, ClassroomField} {
			agg := AggregateBy(fs, field)
			if agg.Total() != fs.Len() {
				t.Errorf("term %q field %s: Total() = %d, want %d", term, field, agg.Total(), fs.Len())
			}
		}
	}
}

func TestAggregateBy_MissingFieldExcluded(t *testing.T) {
	// The attendance writer emits "Classroom"; the dashboard reads "classroom".
	rs, _, err := Parse(strings.NewReader("Division,Classroom\nFY,A101\nSY,A101\n"))
	if err != nil {
		t.Fatal(err)
	}

	agg := AggregateBy(rs, ClassroomField)
	if agg.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (no undefined bucket)", agg.Len())
	}
	if agg.Missing() != 2 {
		t.Errorf("Missing() = %d, want 2", agg.Missing())
	}
	if agg.Count("undefined") != 0 {
		t.Error("missing fields must not be counted under \"undefined\"")
	}
}

func TestAggregateBy_RecordsWithoutField(t *testing.T) {
	cols := []string{ColDivision, ColClassroom}
	rs := NewRecordSet(cols, []Record{
		RecordFromMap(cols, map[string]string{ColDivision: "FY", ColClassroom: "A101"}),
		RecordFromMap(cols, map[string]string{ColDivision: "SY"}),
		RecordFromMap(cols, map[string]string{ColDivision: "FY", ColClassroom: "A101"}),
	})

	agg := AggregateBy(rs, ClassroomField)
	if diff := cmp.Diff([]Pair{{Name: "A101", Value: 2}}, agg.Pairs()); diff != "" {
		t.Errorf("Pairs() mismatch (-want +got):\n%s", diff)
	}
	if agg.Missing() != 1 {
		t.Errorf("Missing() = %d, want 1", agg.Missing())
	}
	if got := AggregateBy(rs, DivisionField).Total(); got != 3 {
		t.Errorf("Division Total() = %d, want 3", got)
	}
}

func TestAggregateBy_EmptyValueCounted(t *testing.T) {
	rs, _, err := Parse(strings.NewReader("Division,classroom\nFY,\nSY,C1\n"))
	if err != nil {
		t.Fatal(err)
	}
	agg := AggregateBy(rs, ClassroomField)
	if agg.Count("") != 1 {
		t.Errorf("Count(\"\") = %d, want 1", agg.Count(""))
	}
	if agg.Total() != 2 {
		t.Errorf("Total() = %d, want 2", agg.Total())
	}
}

func TestAggregateBy_Empty(t *testing.T) {
	agg := AggregateBy(RecordSet{}, DivisionField)
	if agg.Len() != 0 || agg.Total() != 0 {
		t.Errorf("empty aggregate = %d keys, %d total", agg.Len(), agg.Total())
	}
	if pairs := agg.Pairs(); len(pairs) != 0 {
		t.Errorf("Pairs() = %v, want empty", pairs)
	}
}
