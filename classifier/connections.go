package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"defect-classify-pipeline/models"
)

// connectionProximityLimit is the along-pipe distance within which an
// open joint is treated as affecting a junction or connection.
var connectionProximityLimit = decimal.NewFromFloat(0.7)

var (
	reOpenJointPos  = regexp.MustCompile(`\bOJM\s+(\d+(?:\.\d+)?)\s*m`)
	reConnectionPos = regexp.MustCompile(`\b(JN|CN)\s+(\d+(?:\.\d+)?)\s*m`)
)

// ConnectionFlag marks an OJM within proximity of a junction or
// connection.
type ConnectionFlag struct {
	OpenJointMeterage  string
	ConnectionMeterage string
	ConnectionCode     string
	Recommendation     string
}

// NearbyConnections pairs every OJM location with every JN/CN location
// and flags pairs within the proximity limit. Grading is unaffected;
// the flags feed construction-sector recommendations only.
func NearbyConnections(text string) []ConnectionFlag {
	joints := reOpenJointPos.FindAllStringSubmatch(text, -1)
	connections := reConnectionPos.FindAllStringSubmatch(text, -1)
	if len(joints) == 0 || len(connections) == 0 {
		return nil
	}

	var flags []ConnectionFlag
	for _, joint := range joints {
		jointPos, err := decimal.NewFromString(joint[1])
		if err != nil {
			continue
		}
		for _, conn := range connections {
			connPos, err := decimal.NewFromString(conn[2])
			if err != nil {
				continue
			}
			if jointPos.Sub(connPos).Abs().GreaterThan(connectionProximityLimit) {
				continue
			}
			flag := ConnectionFlag{
				OpenJointMeterage:  jointPos.StringFixed(2) + "m",
				ConnectionMeterage: connPos.StringFixed(2) + "m",
				ConnectionCode:     conn[1],
			}
			flag.Recommendation = fmt.Sprintf(
				"Open joint at %s lies within 0.70m of %s at %s. Reopen the junction/connection after joint repair to confirm it has not been obstructed.",
				flag.OpenJointMeterage, connectionLabel(conn[1]), flag.ConnectionMeterage)
			flags = append(flags, flag)
		}
	}
	return flags
}

func connectionLabel(code string) string {
	if code == "JN" {
		return "junction"
	}
	return "connection"
}

// appendConnectionRecommendations folds nearby-connection flags into a
// result's recommendation text. Construction sector only.
func (c *Classifier) appendConnectionRecommendations(result *models.ClassificationResult, ctx *evalContext) {
	if ctx.sector != models.SectorConstruction {
		return
	}
	flags := NearbyConnections(ctx.raw)
	if len(flags) == 0 {
		return
	}
	parts := []string{result.Recommendations}
	for _, flag := range flags {
		parts = append(parts, flag.Recommendation)
	}
	result.Recommendations = strings.Join(parts, " ")
}
