package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// Search returns the records of rs that match term, in RecordSet order.
//
// A record matches when any of its values contains term, compared with
// Unicode case folding. The empty term matches every record. Search always
// starts from the full RecordSet, so successive searches can widen as well
// as narrow.
func Search(rs RecordSet, term string) FilteredSet {
	fs := FilteredSet{header: rs.header}
	if term == "" {
		fs.indices = make([]int, len(rs.records))
		for i := range rs.records {
			fs.indices[i] = i
		}
		fs.records = rs.Records()
		return fs
	}

	// A Caser is stateful, so each search gets its own. Fold is full Unicode
	// folding, looser than lowercasing: "strasse" matches "Straße".
	folder := cases.Fold()
	needle := folder.String(term)

	for i, rec := range rs.records {
		if recordContains(rec, needle, folder) {
			fs.indices = append(fs.indices, i)
			fs.records = append(fs.records, rec)
		}
	}
	return fs
}

// Matches reports whether rec matches term under the Search rule.
func Matches(rec Record, term string) bool {
	if term == "" {
		return true
	}
	folder := cases.Fold()
	return recordContains(rec, folder.String(term), folder)
}

func recordContains(rec Record, needle string, folder cases.Caser) bool {
	for _, v := range rec.vals {
		if strings.Contains(folder.String(v), needle) {
			return true
		}
	}
	return false
}
