// Package standards holds the static reference data the classification
// pipeline grades against: the MSCC5 defect code table, SRM grading
// interpretations, OS19x adoption thresholds, repair-book and
// cleaning-manual method lookups, and per-sector adoption standards.
// All tables are read-only after construction and safe for concurrent
// use without synchronization.
package standards

import (
	"strings"

	"github.com/apex/log"

	"defect-classify-pipeline/models"
)

// DefectCodeEntry is one row of the MSCC5 defect code table.
type DefectCodeEntry struct {
	Code              string
	Description       string
	Type              string // models.DefectTypeStructural or models.DefectTypeService
	DefaultGrade      int    // 0..5
	Risk              string
	RecommendedAction string
	ActionType        int
}

// SRMGradingEntry interprets a (type, grade) pair into human-readable
// criteria and action requirements.
type SRMGradingEntry struct {
	Description    string
	Criteria       string
	ActionRequired string
	Adoptable      bool
}

// Provider is the injected read-only reference-data surface consumed by
// the classifier and composer. Implementations must be immutable after
// construction.
type Provider interface {
	// DefectCode looks up an MSCC5 entry by code, case-insensitive.
	DefectCode(code string) (DefectCodeEntry, bool)
	// SRMGrading looks up the grading interpretation for (type, grade).
	SRMGrading(defectType string, grade int) (SRMGradingEntry, bool)
	// AdoptionStandard returns the adoption standard for a sector,
	// falling back to the built-in per-sector defaults.
	AdoptionStandard(sector string) models.AdoptionStandard
	// OS19xMaxGrade is the maximum adoptable grade for a defect type
	// under the OS19x adoption standard.
	OS19xMaxGrade(defectType string) int
	// OS19xBanned reports whether a code triggers automatic adoption
	// rejection regardless of grade.
	OS19xBanned(code string) bool
	// RepairMethods returns repair-book methods for a code, nil when
	// the book has no entry.
	RepairMethods(code string) []string
	// CleaningMethods returns cleaning-manual methods for a code, nil
	// when the manual has no entry.
	CleaningMethods(code string) []string
	// CostBand returns the default cost band string for a grade,
	// "£TBC" for grades outside the table.
	CostBand(grade int) string
	// IsObservationCode reports whether a code is a recognized
	// non-defect observation code.
	IsObservationCode(code string) bool
}

// StaticProvider serves the in-code tables, optionally overlaid with
// adoption standards hydrated from persistence.
type StaticProvider struct {
	adoption map[string]models.AdoptionStandard
}

// NewStaticProvider builds a provider backed purely by the built-in
// tables.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{adoption: defaultAdoptionStandards()}
}

// NewProviderWithAdoption overlays persisted adoption-standard rows on
// the built-in defaults. Sectors missing from the overlay keep the
// documented fallback values; that degraded-data condition is logged.
func NewProviderWithAdoption(rows map[string]models.AdoptionStandard) *StaticProvider {
	adoption := defaultAdoptionStandards()
	for sector := range adoption {
		row, ok := rows[sector]
		if !ok {
			log.WithField("sector", sector).Warn("no persisted adoption standard, using built-in fallback")
			continue
		}
		adoption[sector] = row
	}
	return &StaticProvider{adoption: adoption}
}

func (p *StaticProvider) DefectCode(code string) (DefectCodeEntry, bool) {
	entry, ok := defectCodes[normalizeCode(code)]
	return entry, ok
}

func (p *StaticProvider) SRMGrading(defectType string, grade int) (SRMGradingEntry, bool) {
	entry, ok := srmGrades[srmKey{defectType, grade}]
	return entry, ok
}

func (p *StaticProvider) AdoptionStandard(sector string) models.AdoptionStandard {
	if std, ok := p.adoption[strings.ToLower(sector)]; ok {
		return std
	}
	// Unrecognized sector: sector-agnostic default.
	return p.adoption[models.SectorUtilities]
}

func (p *StaticProvider) OS19xMaxGrade(defectType string) int {
	if max, ok := os19xMaxGrades[defectType]; ok {
		return max
	}
	return os19xMaxGrades[models.DefectTypeService]
}

func (p *StaticProvider) OS19xBanned(code string) bool {
	_, ok := os19xBannedCodes[normalizeCode(code)]
	return ok
}

func (p *StaticProvider) RepairMethods(code string) []string {
	return repairBook[normalizeCode(code)]
}

func (p *StaticProvider) CleaningMethods(code string) []string {
	return cleaningManual[normalizeCode(code)]
}

func (p *StaticProvider) CostBand(grade int) string {
	if band, ok := defaultCostBands[grade]; ok {
		return band
	}
	return "£TBC"
}

func (p *StaticProvider) IsObservationCode(code string) bool {
	_, ok := observationCodes[normalizeCode(code)]
	return ok
}

// normalizeCode upper-cases a token and strips the separator used in
// composite codes such as "S/A".
func normalizeCode(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "/", "")
}
