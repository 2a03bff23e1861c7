package models

import "time"

// Defect type values used throughout the pipeline.
const (
	DefectTypeStructural = "structural"
	DefectTypeService    = "service"
)

// Adoptability values. Conditional only ever appears on per-observation
// results; section-level aggregation collapses to Yes/No.
const (
	AdoptableYes         = "Yes"
	AdoptableNo          = "No"
	AdoptableConditional = "Conditional"
)

// Rules run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Recognized sectors. Unrecognized sector strings fall back to default
// behavior without escalation effects.
const (
	SectorUtilities    = "utilities"
	SectorAdoption     = "adoption"
	SectorHighways     = "highways"
	SectorInsurance    = "insurance"
	SectorConstruction = "construction"
	SectorDomestic     = "domestic"
)

// ParsedObservation is one structured tuple extracted from a raw
// observation string. Ephemeral: produced fresh on every parse, never
// persisted independent of its source text.
type ParsedObservation struct {
	Meterage    string `json:"meterage"` // normalized "X.XXm"
	DefectCode  string `json:"defect_code"`
	Description string `json:"description"`
	Percentage  string `json:"percentage"` // "NN" or "NN-MM", empty when absent
}

// SecstatGrades carries authoritative grades from a source survey
// database. A non-nil field overrides the classifier's own inference
// for that defect type.
type SecstatGrades struct {
	Structural *int `json:"structural"`
	Service    *int `json:"service"`
}

// ClassificationResult is the derived, recomputable output of the
// classifier for one section (or split sub-section). It is a cache,
// not a source of truth.
type ClassificationResult struct {
	DefectCode            string   `json:"defect_code"`
	DefectDescription     string   `json:"defect_description"`
	SeverityGrade         int      `json:"severity_grade"`
	DefectType            string   `json:"defect_type"`
	Recommendations       string   `json:"recommendations"`
	RiskAssessment        string   `json:"risk_assessment"`
	Adoptable             string   `json:"adoptable"`
	EstimatedCost         string   `json:"estimated_cost"`
	SRMGrading            string   `json:"srm_grading"`
	RecommendationMethods []string `json:"recommendation_methods,omitempty"`
	CleaningMethods       []string `json:"cleaning_methods,omitempty"`
	AdoptionNotes         string   `json:"adoption_notes,omitempty"`
}

// SectionRecord is one inspection section as persisted by the
// inspection subsystem. RawObservations is the append-only ground
// truth; everything derived from it may be recomputed freely.
type SectionRecord struct {
	ID              int64          `json:"id"`
	UploadID        string         `json:"upload_id"`
	ItemNo          int            `json:"item_no"`
	LetterSuffix    string         `json:"letter_suffix"`
	Sector          string         `json:"sector"`
	StartMH         string         `json:"start_mh"`
	FinishMH        string         `json:"finish_mh"`
	PipeSize        string         `json:"pipe_size"`
	PipeMaterial    string         `json:"pipe_material"`
	TotalLength     string         `json:"total_length"`
	RawObservations []string       `json:"raw_observations"`
	SecstatGrades   *SecstatGrades `json:"secstat_grades,omitempty"`
	DefectType      string         `json:"defect_type,omitempty"`
}

// AdoptionStandard drives belly-condition pass/fail for a sector.
type AdoptionStandard struct {
	Sector         string `json:"sector"`
	BellyThreshold int    `json:"belly_threshold"` // percent
	StandardName   string `json:"standard_name"`
	Authority      string `json:"authority"`
}

// RulesRun is one versioned, append-only execution of the
// classification pipeline over all sections of an upload. Once
// FinishedAt is set the run and its observation rules are immutable.
type RulesRun struct {
	ID             string     `json:"id"`
	UploadID       string     `json:"upload_id"`
	ParserVersion  string     `json:"parser_version"`
	RulesetVersion string     `json:"ruleset_version"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Status         string     `json:"status"`
	ErrorText      string     `json:"error_text,omitempty"`
}

// ObservationRule is one classified observation row belonging to a
// rules run: one per raw observation per section per run.
type ObservationRule struct {
	ID                 int64  `json:"id"`
	RulesRunID         string `json:"rules_run_id"`
	SectionID          int64  `json:"section_id"`
	ObservationIdx     int    `json:"observation_idx"`
	MSCC5JSON          string `json:"mscc5_json"`
	DefectType         string `json:"defect_type"`
	SeverityGrade      int    `json:"severity_grade"`
	RecommendationText string `json:"recommendation_text"`
	Adoptability       string `json:"adoptability"`
	OpActionType       int    `json:"op_action_type"`
	PricingJSON        string `json:"pricing_json"`
}

// DashboardRow is one section-level aggregate composed from the
// observation rules of the latest successful run.
type DashboardRow struct {
	SectionID       int64  `json:"section_id"`
	ItemNo          int    `json:"item_no"`
	LetterSuffix    string `json:"letter_suffix"`
	SeverityGrade   int    `json:"severity_grade"`
	DefectType      string `json:"defect_type"`
	Recommendations string `json:"recommendations"`
	Adoptability    string `json:"adoptability"`
	EstimatedCost   string `json:"estimated_cost"`
}

// DashboardView is the composed dashboard payload plus run provenance.
type DashboardView struct {
	UploadID       string         `json:"upload_id"`
	RulesRunID     string         `json:"rules_run_id"`
	RulesetVersion string         `json:"ruleset_version"`
	DerivedAt      time.Time      `json:"derived_at"`
	Rows           []DashboardRow `json:"rows"`
}
