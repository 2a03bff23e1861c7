package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodeMeterage(t *testing.T) {
	observations := Parse("DER 13.07m: Settled deposits, coarse, 5% cross-sectional area loss")
	require.Len(t, observations, 1)
	assert.Equal(t, "13.07m", observations[0].Meterage)
	assert.Equal(t, "DER", observations[0].DefectCode)
	assert.Equal(t, "Settled deposits, coarse, 5% cross-sectional area loss", observations[0].Description)
	assert.Equal(t, "5", observations[0].Percentage)
}

func TestParseMeterageList(t *testing.T) {
	observations := Parse("DER 13.07m, 16.93m, 17.73m: Settled deposits, coarse, 5% cross-sectional area loss")
	require.Len(t, observations, 3)

	meterages := []string{observations[0].Meterage, observations[1].Meterage, observations[2].Meterage}
	assert.Equal(t, []string{"13.07m", "16.93m", "17.73m"}, meterages)
	for _, obs := range observations {
		assert.Equal(t, "DER", obs.DefectCode)
		assert.Equal(t, "5", obs.Percentage)
	}
}

func TestParseMeterageListSuppressesDuplicates(t *testing.T) {
	observations := Parse("DER 13.07m, 13.07m, 17.73m: Settled deposits")
	require.Len(t, observations, 2)
	assert.Equal(t, "13.07m", observations[0].Meterage)
	assert.Equal(t, "17.73m", observations[1].Meterage)
}

func TestParseMeterageFirst(t *testing.T) {
	observations := Parse("13.07m DER: Settled deposits, coarse")
	require.Len(t, observations, 1)
	assert.Equal(t, "13.07m", observations[0].Meterage)
	assert.Equal(t, "DER", observations[0].DefectCode)
}

func TestParseLooseShapes(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		code       string
		meterage   string
		percentage string
	}{
		{
			name:       "meterage code description percentage",
			raw:        "4.2 FC circumferential fracture 30%",
			code:       "FC",
			meterage:   "4.20m",
			percentage: "30",
		},
		{
			name:       "code meterage description without colon",
			raw:        "FC 4.2m circumferential fracture",
			code:       "FC",
			meterage:   "4.20m",
			percentage: "",
		},
		{
			name:       "percentage range",
			raw:        "9.0m DES fine deposits 10-20%",
			code:       "DES",
			meterage:   "9.00m",
			percentage: "10-20",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			observations := Parse(tc.raw)
			require.Len(t, observations, 1)
			assert.Equal(t, tc.code, observations[0].DefectCode)
			assert.Equal(t, tc.meterage, observations[0].Meterage)
			assert.Equal(t, tc.percentage, observations[0].Percentage)
		})
	}
}

func TestParseInfersCodeFromDescription(t *testing.T) {
	observations := Parse("13.07m Settled deposits, coarse, 5% cross-sectional area loss")
	require.Len(t, observations, 1)
	assert.Equal(t, "DER", observations[0].DefectCode)
	assert.Equal(t, "5", observations[0].Percentage)
}

func TestParseMultipleFragments(t *testing.T) {
	observations := Parse("FC 4.2m: Circumferential fracture; DER 9.0m: Coarse deposits")
	require.Len(t, observations, 2)
	assert.Equal(t, "FC", observations[0].DefectCode)
	assert.Equal(t, "DER", observations[1].DefectCode)
}

func TestParseNoMatchReturnsEmpty(t *testing.T) {
	assert.Empty(t, Parse("General remark about the survey footage"))
	assert.Empty(t, Parse(""))
}

func TestParseAbsentPercentageStaysEmpty(t *testing.T) {
	observations := Parse("FC 4.2m: Circumferential fracture at joint")
	require.Len(t, observations, 1)
	assert.Equal(t, "", observations[0].Percentage)
}

func TestParseDeterministic(t *testing.T) {
	raw := "DER 13.07m, 16.93m, 17.73m: Settled deposits; FC 4.2m: Circumferential fracture"
	first := Parse(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Parse(raw))
	}
}
