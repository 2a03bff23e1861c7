package standards

import "defect-classify-pipeline/models"

// defectCodes is the MSCC5 defect code table. Keys are normalized
// (upper case, "/" stripped), so "S/A" is stored as "SA".
var defectCodes = map[string]DefectCodeEntry{
	// Structural defects.
	"FC": {
		Code:              "FC",
		Description:       "Fracture, circumferential",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      4,
		Risk:              "Loss of structural integrity, risk of collapse under load",
		RecommendedAction: "Structural repair required. Patch repair or localized lining.",
		ActionType:        4,
	},
	"FL": {
		Code:              "FL",
		Description:       "Fracture, longitudinal",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      4,
		Risk:              "Progressive deformation, risk of collapse",
		RecommendedAction: "Structural repair required. Consider full-length CIPP lining.",
		ActionType:        4,
	},
	"FM": {
		Code:              "FM",
		Description:       "Fractures, multiple",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      5,
		Risk:              "Imminent structural failure",
		RecommendedAction: "Excavate and replace affected length.",
		ActionType:        5,
	},
	"B": {
		Code:              "B",
		Description:       "Broken",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      5,
		Risk:              "Collapse likely, ground loss possible",
		RecommendedAction: "Excavate and replace affected length immediately.",
		ActionType:        5,
	},
	"CR": {
		Code:              "CR",
		Description:       "Crack, circumferential",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      3,
		Risk:              "Potential for deterioration into fracture",
		RecommendedAction: "Monitor or patch repair depending on grade.",
		ActionType:        3,
	},
	"CL": {
		Code:              "CL",
		Description:       "Crack, longitudinal",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      3,
		Risk:              "Potential for deterioration into longitudinal fracture",
		RecommendedAction: "Monitor or patch repair depending on grade.",
		ActionType:        3,
	},
	"JDS": {
		Code:              "JDS",
		Description:       "Joint displaced, slight",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      2,
		Risk:              "Minor infiltration risk",
		RecommendedAction: "No immediate action. Note for future surveys.",
		ActionType:        1,
	},
	"JDM": {
		Code:              "JDM",
		Description:       "Joint displaced, medium",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      3,
		Risk:              "Infiltration and root ingress risk",
		RecommendedAction: "Localized joint repair recommended.",
		ActionType:        3,
	},
	"JDL": {
		Code:              "JDL",
		Description:       "Joint displaced, large",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      4,
		Risk:              "Significant infiltration, soil migration, void formation",
		RecommendedAction: "Excavate and realign or patch repair the joint.",
		ActionType:        4,
	},
	"OJS": {
		Code:              "OJS",
		Description:       "Open joint, slight",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      2,
		Risk:              "Minor infiltration risk",
		RecommendedAction: "No immediate action. Note for future surveys.",
		ActionType:        1,
	},
	"OJM": {
		Code:              "OJM",
		Description:       "Open joint, medium",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      3,
		Risk:              "Infiltration and exfiltration at joint",
		RecommendedAction: "Localized joint sealing or patch repair.",
		ActionType:        3,
	},
	"OJL": {
		Code:              "OJL",
		Description:       "Open joint, large",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      4,
		Risk:              "Soil migration through joint, void formation",
		RecommendedAction: "Excavate and remake joint or install patch liner.",
		ActionType:        4,
	},
	"DEF": {
		Code:              "DEF",
		Description:       "Deformity",
		Type:              models.DefectTypeStructural,
		DefaultGrade:      4,
		Risk:              "Reduced cross-section, progressive collapse risk",
		RecommendedAction: "Assess deformation percentage. Re-round and line or replace.",
		ActionType:        4,
	},
	// Service defects.
	"DER": {
		Code:              "DER",
		Description:       "Settled deposits, coarse",
		Type:              models.DefectTypeService,
		DefaultGrade:      4,
		Risk:              "Reduced hydraulic capacity, blockage risk",
		RecommendedAction: "Cleanse section and resurvey to confirm condition.",
		ActionType:        2,
	},
	"DES": {
		Code:              "DES",
		Description:       "Settled deposits, fine",
		Type:              models.DefectTypeService,
		DefaultGrade:      3,
		Risk:              "Reduced hydraulic capacity",
		RecommendedAction: "Cleanse section and resurvey to confirm condition.",
		ActionType:        2,
	},
	"DEC": {
		Code:              "DEC",
		Description:       "Deposits, concrete or hard compacted",
		Type:              models.DefectTypeService,
		DefaultGrade:      4,
		Risk:              "Permanent capacity loss, jetting-resistant obstruction",
		RecommendedAction: "Mechanical removal of hard deposits required.",
		ActionType:        3,
	},
	"RI": {
		Code:              "RI",
		Description:       "Roots intruding",
		Type:              models.DefectTypeService,
		DefaultGrade:      3,
		Risk:              "Progressive blockage, joint damage",
		RecommendedAction: "Root cut and resurvey. Identify ingress point.",
		ActionType:        3,
	},
	"RO": {
		Code:              "RO",
		Description:       "Roots, mass",
		Type:              models.DefectTypeService,
		DefaultGrade:      4,
		Risk:              "Severe flow restriction",
		RecommendedAction: "Root cut, consider joint sealing at ingress points.",
		ActionType:        3,
	},
	"OB": {
		Code:              "OB",
		Description:       "Obstruction in line",
		Type:              models.DefectTypeService,
		DefaultGrade:      4,
		Risk:              "Blockage and surcharge upstream",
		RecommendedAction: "Remove obstruction and resurvey.",
		ActionType:        3,
	},
	"OBI": {
		Code:              "OBI",
		Description:       "Other obstacles, intruding",
		Type:              models.DefectTypeService,
		DefaultGrade:      3,
		Risk:              "Flow restriction, debris accumulation point",
		RecommendedAction: "Remove intruding obstacle.",
		ActionType:        3,
	},
	"BLO": {
		Code:              "BLO",
		Description:       "Blockage",
		Type:              models.DefectTypeService,
		DefaultGrade:      5,
		Risk:              "Complete loss of service",
		RecommendedAction: "Clear blockage immediately and resurvey.",
		ActionType:        5,
	},
	"GRE": {
		Code:              "GRE",
		Description:       "Grease accumulation",
		Type:              models.DefectTypeService,
		DefaultGrade:      3,
		Risk:              "Progressive capacity loss, blockage risk",
		RecommendedAction: "Degrease by high-pressure jetting.",
		ActionType:        2,
	},
	"SA": {
		Code:              "S/A",
		Description:       "Service connection",
		Type:              models.DefectTypeService,
		DefaultGrade:      2,
		Risk:              "Connection status unverified",
		RecommendedAction: "Verify connection status with contractor.",
		ActionType:        2,
	},
	"WL": {
		Code:              "WL",
		Description:       "Water level",
		Type:              models.DefectTypeService,
		DefaultGrade:      2,
		Risk:              "Possible downstream restriction or gradient defect",
		RecommendedAction: "Investigate cause of standing water.",
		ActionType:        2,
	},
}

// observationCodes are recognized non-defect observation codes. Their
// presence alone never produces a defect classification.
var observationCodes = map[string]struct{}{
	"LL":   {},
	"REM":  {},
	"MCPP": {},
	"REST": {},
	"BEND": {},
	"WL":   {},
	"RE":   {},
	"BRF":  {},
	"JN":   {},
	"LR":   {},
	"CN":   {},
	"MH":   {},
	"ST":   {},
	"FH":   {},
}

// DefectIndicatingCodes are codes whose presence in a raw string marks
// the section as carrying an actionable defect. Used by the
// observation-only branch to rule itself out.
var DefectIndicatingCodes = []string{
	"DER", "FC", "CR", "FL", "RI", "JDL", "JDS", "DES", "DEC", "OB", "DEF", "OJL", "OJM",
}
