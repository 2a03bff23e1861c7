package classifier

import "strings"

// Service-connection confirmation templates. Which one applies depends
// on what the survey says about the connection's state; all of them
// require contractor confirmation before remedial works.
const (
	recConnectionNotConnected = "Service connection appears not connected or capped off. Confirm with the contractor whether the connection is live before any remedial works are priced."
	recConnectionBung         = "Bung identified in line at the service connection. Contractor to confirm purpose, remove the bung and resurvey the connection."
	recConnectionBlocked      = "Service connection shows complete blockage. Contractor to confirm connection status, clear the blockage and resurvey before adoption or handover."
	recConnectionGeneric      = "Verify service connection status with the contractor and record the outcome against this section."
)

// serviceConnectionRecommendation selects among the contractor
// confirmation templates based on the connection state indicators in
// the text.
func (c *Classifier) serviceConnectionRecommendation(ctx *evalContext) string {
	switch {
	case strings.Contains(ctx.lower, "no connected") || strings.Contains(ctx.lower, "not connected"):
		return recConnectionNotConnected
	case strings.Contains(ctx.lower, "bung in line"):
		return recConnectionBung
	case strings.Contains(ctx.lower, "wl 100%") || strings.Contains(ctx.lower, "complete blockage"):
		return recConnectionBlocked
	default:
		return recConnectionGeneric
	}
}
