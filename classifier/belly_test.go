package classifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"defect-classify-pipeline/models"
)

func TestBellyDetection(t *testing.T) {
	c := newTestClassifier()

	belly := c.AnalyzeBelly("WL 5.0m 30%; WL 8.0m 45%; WL 12.0m 20%", "construction")
	assert.True(t, belly.IsBelly)
	assert.Equal(t, 45, belly.MaxWaterLevel)
	assert.True(t, belly.AdoptionFail) // 45 > construction threshold 10
	assert.Contains(t, belly.Recommendation, "Excavate")
	assert.Contains(t, belly.Recommendation, "Building Regulations Part H")
}

func TestBellyRequiresThreeReadings(t *testing.T) {
	c := newTestClassifier()

	belly := c.AnalyzeBelly("WL 5.0m 30%; WL 8.0m 45%", "construction")
	assert.False(t, belly.IsBelly)
}

func TestBellyRequiresRiseThenFall(t *testing.T) {
	c := newTestClassifier()

	monotonic := c.AnalyzeBelly("WL 5.0m 10%; WL 8.0m 20%; WL 12.0m 30%", "construction")
	assert.False(t, monotonic.IsBelly)
}

func TestBellyOrdersByMeterage(t *testing.T) {
	c := newTestClassifier()

	// Same readings delivered out of order still form the same belly.
	belly := c.AnalyzeBelly("WL 12.0m 20%; WL 5.0m 30%; WL 8.0m 45%", "construction")
	assert.True(t, belly.IsBelly)
	assert.Equal(t, 45, belly.MaxWaterLevel)
}

func TestBellyThresholdEdge(t *testing.T) {
	c := newTestClassifier()

	// Utilities threshold is 25%: exactly at the threshold passes,
	// one point above fails.
	atLimit := c.AnalyzeBelly("WL 5.0m 10%; WL 8.0m 25%; WL 12.0m 5%", "utilities")
	assert.True(t, atLimit.IsBelly)
	assert.False(t, atLimit.AdoptionFail)

	overLimit := c.AnalyzeBelly("WL 5.0m 10%; WL 8.0m 26%; WL 12.0m 5%", "utilities")
	assert.True(t, overLimit.IsBelly)
	assert.True(t, overLimit.AdoptionFail)
}

func TestBellyClassification(t *testing.T) {
	c := newTestClassifier()

	result := c.Classify("WL 5.0m 30%; WL 8.0m 45%; WL 12.0m 20%", "construction")
	assert.Equal(t, 3, result.SeverityGrade)
	assert.Equal(t, models.DefectTypeService, result.DefectType)
	assert.Equal(t, models.AdoptableNo, result.Adoptable)
	assert.Contains(t, result.Recommendations, "Excavate")
	assert.Contains(t, result.AdoptionNotes, "10%")
}

func TestNearbyConnections(t *testing.T) {
	flags := NearbyConnections("OJM 5.00m: Open joint medium; JN 5.50m: Junction")
	assert.Len(t, flags, 1)
	assert.Contains(t, flags[0].Recommendation, "Reopen")

	far := NearbyConnections("OJM 5.00m: Open joint medium; JN 6.00m: Junction")
	assert.Empty(t, far)

	edge := NearbyConnections(fmt.Sprintf("OJM %.2fm: Open joint; CN %.2fm: Connection", 5.00, 5.70))
	assert.Len(t, edge, 1)
}

func TestConnectionRecommendationConstructionOnly(t *testing.T) {
	c := newTestClassifier()
	text := "OJM 5.00m: Open joint medium; JN 5.50m: Junction"

	construction := c.Classify(text, "construction")
	assert.Contains(t, construction.Recommendations, "Reopen the junction")

	utilities := c.Classify(text, "utilities")
	assert.NotContains(t, utilities.Recommendations, "Reopen the junction")
}
