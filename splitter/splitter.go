// Package splitter detects inspection sections whose raw text carries
// both structural and service defects and splits them into lettered
// sub-sections, each carrying only one defect type, so that downstream
// records keep a single classification per row.
package splitter

import (
	"strconv"

	"defect-classify-pipeline/models"
	"defect-classify-pipeline/parser"
	"defect-classify-pipeline/standards"
)

// Splitter groups a section's observations by defect type.
type Splitter struct {
	std standards.Provider
}

func New(std standards.Provider) *Splitter {
	return &Splitter{std: std}
}

// ShouldSplit reports whether the text contains defects of both types.
func (s *Splitter) ShouldSplit(defectText string) bool {
	types := make(map[string]struct{})
	for _, obs := range parser.Parse(defectText) {
		if entry, ok := s.std.DefectCode(obs.DefectCode); ok && entry.DefaultGrade > 0 {
			types[entry.Type] = struct{}{}
		}
	}
	_, structural := types[models.DefectTypeStructural]
	_, service := types[models.DefectTypeService]
	return structural && service
}

// Split produces one SectionRecord per defect type present in the
// text. Each record inherits the non-defect fields of the template and
// carries only the raw fragments relevant to its type. Suffix
// assignment is a single left-to-right scan: the first defect-type
// group found keeps the bare item number, subsequent distinct-type
// groups get "a", "b", ... in scan order, so reprocessing identical
// text always yields the same suffixes.
func (s *Splitter) Split(defectText string, baseItemNo int, template models.SectionRecord) []models.SectionRecord {
	type group struct {
		defectType string
		fragments  []string
	}
	var groups []group
	index := make(map[string]int)

	for _, fragment := range parser.Fragments(defectText) {
		defectType := s.fragmentType(fragment)
		idx, ok := index[defectType]
		if !ok {
			idx = len(groups)
			index[defectType] = idx
			groups = append(groups, group{defectType: defectType})
		}
		groups[idx].fragments = append(groups[idx].fragments, fragment)
	}

	if len(groups) <= 1 {
		record := template
		record.ItemNo = baseItemNo
		record.LetterSuffix = ""
		record.RawObservations = parser.Fragments(defectText)
		if len(groups) == 1 {
			record.DefectType = groups[0].defectType
		}
		return []models.SectionRecord{record}
	}

	records := make([]models.SectionRecord, 0, len(groups))
	for i, g := range groups {
		record := template
		record.ItemNo = baseItemNo
		record.LetterSuffix = suffixFor(i)
		record.RawObservations = g.fragments
		record.DefectType = g.defectType
		records = append(records, record)
	}
	return records
}

// fragmentType resolves the defect type a fragment contributes to.
// Fragments with no recognized defect code follow the service side, so
// plain observations stay with the base record when service defects
// lead the scan and otherwise form their own service group.
func (s *Splitter) fragmentType(fragment string) string {
	for _, obs := range parser.Parse(fragment) {
		if entry, ok := s.std.DefectCode(obs.DefectCode); ok && entry.DefaultGrade > 0 {
			return entry.Type
		}
	}
	return models.DefectTypeService
}

// suffixFor maps group scan order to a letter suffix: the first group
// keeps the bare item number.
func suffixFor(i int) string {
	if i == 0 {
		return ""
	}
	return string(rune('a' + i - 1))
}

// JoinItemNo renders an item number with its letter suffix, e.g. "22a".
func JoinItemNo(itemNo int, suffix string) string {
	return strconv.Itoa(itemNo) + suffix
}
