package standards

// repairBook maps structural-leaning defect codes to repair methods
// from the repair book. Absence of a code means no applicable method,
// not an error.
var repairBook = map[string][]string{
	"FC": {
		"Localized patch repair (glass-fibre patch liner)",
		"CIPP lining where multiple fractures present in the section",
	},
	"FL": {
		"Full-length CIPP structural lining",
		"Excavate and replace where deformation accompanies the fracture",
	},
	"FM": {
		"Excavate and replace affected length",
	},
	"B": {
		"Excavate and replace affected length",
	},
	"CR": {
		"Localized patch repair",
		"Monitor and re-inspect where grade permits",
	},
	"CL": {
		"Localized patch repair",
		"Monitor and re-inspect where grade permits",
	},
	"JDS": {
		"No repair required, record for future surveys",
	},
	"JDM": {
		"Localized joint repair (patch liner across joint)",
	},
	"JDL": {
		"Excavate and realign joint",
		"Patch liner across joint where excavation impractical",
	},
	"OJS": {
		"No repair required, record for future surveys",
	},
	"OJM": {
		"Joint sealing by localized patch liner",
	},
	"OJL": {
		"Excavate and remake joint",
		"Patch liner across joint where excavation impractical",
	},
	"DEF": {
		"Re-round and line, or excavate and replace where deformation exceeds 10%",
	},
	"OBI": {
		"Cut out intruding obstacle by robotic cutter",
	},
	"DEC": {
		"Mechanical removal by robotic cutter or milling",
	},
}

// cleaningManual maps service-leaning defect codes to cleaning methods.
var cleaningManual = map[string][]string{
	"DER": {
		"High-pressure water jetting",
		"Resurvey after cleansing to confirm condition",
	},
	"DES": {
		"High-pressure water jetting",
		"Resurvey after cleansing to confirm condition",
	},
	"DEC": {
		"Mechanical cutting, jetting ineffective on hard deposits",
	},
	"RO": {
		"Root cutting by rotating chain flail or robotic cutter",
		"Seal joints at root ingress points after cutting",
	},
	"RI": {
		"Root cutting by rotating chain flail",
	},
	"WL": {
		"Jet from downstream manhole to clear suspected restriction",
	},
	"BLO": {
		"Clear blockage by jetting or rodding, resurvey after clearance",
	},
	"GRE": {
		"Degrease by hot-water high-pressure jetting",
	},
	"OB": {
		"Remove obstruction, method dependent on obstruction type",
	},
}
