package standards

import "defect-classify-pipeline/models"

// OS19x adoption thresholds: the maximum grade a section may carry, by
// defect type, and still qualify for adoption. Exceeding the structural
// threshold rejects outright; exceeding the service threshold makes
// adoption conditional on cleansing.
var os19xMaxGrades = map[string]int{
	models.DefectTypeStructural: 3,
	models.DefectTypeService:    3,
}

// os19xBannedCodes trigger automatic adoption rejection regardless of
// computed grade.
var os19xBannedCodes = map[string]struct{}{
	"DEF": {},
	"OB":  {},
	"B":   {},
	"FM":  {},
}

// OS19xBannedNote is the adoption note attached when a banned code is
// present.
const OS19xBannedNote = "Automatic rejection under OS19x: defect code present on the banned list. Section cannot be adopted regardless of severity grade."
