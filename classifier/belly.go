package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// BellyResult is the outcome of belly-condition analysis over a
// section's water-level readings.
type BellyResult struct {
	IsBelly        bool
	MaxWaterLevel  int
	AdoptionFail   bool
	Threshold      int
	StandardName   string
	StartMeterage  string
	FinishMeterage string
	Observation    string
	Recommendation string
}

type waterReading struct {
	meterage decimal.Decimal
	percent  int
}

var reWLReading = regexp.MustCompile(`(?i)wl\s+(\d+(?:\.\d+)?)\s*m[^%]*?(\d{1,3})\s*%`)

// AnalyzeBelly extracts all "WL X.XXm ... NN%" tuples from the text
// and looks for a rise-then-fall pattern across three consecutive
// readings ordered by meterage. Fewer than three readings never
// constitutes a belly. AdoptionFail is true when the maximum observed
// percentage exceeds the sector's belly threshold.
func (c *Classifier) AnalyzeBelly(text, sector string) BellyResult {
	readings := extractWaterReadings(text)
	if len(readings) < 3 {
		return BellyResult{}
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].meterage.LessThan(readings[j].meterage)
	})

	bellyAt := -1
	for i := 1; i < len(readings)-1; i++ {
		if readings[i].percent > readings[i-1].percent && readings[i].percent > readings[i+1].percent {
			bellyAt = i
			break
		}
	}
	if bellyAt < 0 {
		return BellyResult{}
	}

	maxPct := readings[0].percent
	for _, r := range readings {
		if r.percent > maxPct {
			maxPct = r.percent
		}
	}

	std := c.std.AdoptionStandard(sector)
	result := BellyResult{
		IsBelly:        true,
		MaxWaterLevel:  maxPct,
		Threshold:      std.BellyThreshold,
		StandardName:   std.StandardName,
		AdoptionFail:   maxPct > std.BellyThreshold,
		StartMeterage:  readings[bellyAt-1].meterage.StringFixed(2) + "m",
		FinishMeterage: readings[bellyAt+1].meterage.StringFixed(2) + "m",
	}
	result.Observation = fmt.Sprintf(
		"Standing water profile rises then falls between %s and %s, indicating a belly in the pipe run. Maximum water level %d%%.",
		result.StartMeterage, result.FinishMeterage, maxPct)
	if result.AdoptionFail {
		result.Recommendation = fmt.Sprintf(
			"Water level of %d%% exceeds the %d%% belly limit set by %s. Excavate and re-lay the affected length to correct the gradient.",
			maxPct, std.BellyThreshold, std.StandardName)
	} else {
		result.Recommendation = fmt.Sprintf(
			"Belly within the %d%% limit of %s. Monitor for sediment accumulation and re-inspect at the next survey cycle.",
			std.BellyThreshold, std.StandardName)
	}
	return result
}

func extractWaterReadings(text string) []waterReading {
	var readings []waterReading
	for _, m := range reWLReading.FindAllStringSubmatch(text, -1) {
		meterage, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		readings = append(readings, waterReading{meterage: meterage, percent: pct})
	}
	return readings
}
