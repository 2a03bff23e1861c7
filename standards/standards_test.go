package standards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-classify-pipeline/models"
)

func TestDefectCodeLookupCaseInsensitive(t *testing.T) {
	p := NewStaticProvider()

	entry, ok := p.DefectCode("der")
	require.True(t, ok)
	assert.Equal(t, "DER", entry.Code)
	assert.Equal(t, models.DefectTypeService, entry.Type)
	assert.Equal(t, 4, entry.DefaultGrade)

	slash, ok := p.DefectCode("S/A")
	require.True(t, ok)
	assert.Equal(t, "S/A", slash.Code)

	_, ok = p.DefectCode("ZZZZ")
	assert.False(t, ok)
}

func TestSRMGradeZeroAlwaysAdoptable(t *testing.T) {
	p := NewStaticProvider()

	for _, defectType := range []string{models.DefectTypeStructural, models.DefectTypeService} {
		entry, ok := p.SRMGrading(defectType, 0)
		require.True(t, ok)
		assert.True(t, entry.Adoptable)
		assert.Equal(t, "No action required", entry.ActionRequired)
	}
}

func TestAdoptionStandardFallbackValues(t *testing.T) {
	p := NewStaticProvider()

	expected := map[string]int{
		models.SectorConstruction: 10,
		models.SectorHighways:     15,
		models.SectorAdoption:     20,
		models.SectorUtilities:    25,
		models.SectorDomestic:     25,
		models.SectorInsurance:    30,
	}
	for sector, threshold := range expected {
		std := p.AdoptionStandard(sector)
		assert.Equal(t, threshold, std.BellyThreshold, "sector=%s", sector)
		assert.NotEmpty(t, std.StandardName, "sector=%s", sector)
	}
}

func TestAdoptionStandardUnknownSectorFallsBack(t *testing.T) {
	p := NewStaticProvider()

	std := p.AdoptionStandard("not-a-sector")
	assert.Equal(t, 25, std.BellyThreshold)
}

func TestAdoptionOverlayKeepsFallbackForMissingSectors(t *testing.T) {
	p := NewProviderWithAdoption(map[string]models.AdoptionStandard{
		models.SectorConstruction: {
			Sector:         models.SectorConstruction,
			BellyThreshold: 12,
			StandardName:   "Site-specific standard",
		},
	})

	assert.Equal(t, 12, p.AdoptionStandard(models.SectorConstruction).BellyThreshold)
	// Sectors without a persisted row keep the documented defaults.
	assert.Equal(t, 20, p.AdoptionStandard(models.SectorAdoption).BellyThreshold)
}

func TestOS19xBannedCodes(t *testing.T) {
	p := NewStaticProvider()

	assert.True(t, p.OS19xBanned("DEF"))
	assert.True(t, p.OS19xBanned("ob"))
	assert.False(t, p.OS19xBanned("DER"))
	assert.Equal(t, 3, p.OS19xMaxGrade(models.DefectTypeStructural))
}

func TestObservationCodes(t *testing.T) {
	p := NewStaticProvider()

	for _, code := range []string{"LL", "REM", "MCPP", "REST", "BEND", "WL", "RE", "BRF", "JN", "LR"} {
		assert.True(t, p.IsObservationCode(code), "code=%s", code)
	}
	assert.False(t, p.IsObservationCode("FC"))
}

func TestManualLookups(t *testing.T) {
	p := NewStaticProvider()

	assert.NotEmpty(t, p.RepairMethods("FC"))
	assert.NotEmpty(t, p.CleaningMethods("DER"))
	assert.Empty(t, p.RepairMethods("DER"))
	assert.Empty(t, p.CleaningMethods("FC"))
	assert.Empty(t, p.RepairMethods("ZZZZ"))
}

func TestCostBandTable(t *testing.T) {
	p := NewStaticProvider()

	assert.Equal(t, "£0", p.CostBand(0))
	assert.Equal(t, "£50,000+", p.CostBand(5))
	assert.Equal(t, "£TBC", p.CostBand(9))
}
