package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-classify-pipeline/models"
	"defect-classify-pipeline/standards"
)

func newTestSplitter() *Splitter {
	return New(standards.NewStaticProvider())
}

func TestShouldSplitMixedTypes(t *testing.T) {
	s := newTestSplitter()

	assert.True(t, s.ShouldSplit("FC 4.2m: Circumferential fracture; DER 9.0m: Coarse deposits"))
	assert.False(t, s.ShouldSplit("FC 4.2m: Circumferential fracture; CR 6.0m: Crack"))
	assert.False(t, s.ShouldSplit("DER 9.0m: Coarse deposits; DES 11.0m: Fine deposits"))
	assert.False(t, s.ShouldSplit("General remark about the weather"))
}

func TestSplitDualDefectSection(t *testing.T) {
	s := newTestSplitter()
	template := models.SectionRecord{
		UploadID: "upload-1",
		Sector:   "utilities",
		StartMH:  "MH1",
		FinishMH: "MH2",
	}

	records := s.Split("FC 4.2m: Circumferential fracture; DER 9.0m: Coarse deposits", 22, template)
	require.Len(t, records, 2)

	// First scanned defect type keeps the bare item number.
	assert.Equal(t, 22, records[0].ItemNo)
	assert.Equal(t, "", records[0].LetterSuffix)
	assert.Equal(t, models.DefectTypeStructural, records[0].DefectType)
	assert.Equal(t, []string{"FC 4.2m: Circumferential fracture"}, records[0].RawObservations)

	assert.Equal(t, 22, records[1].ItemNo)
	assert.Equal(t, "a", records[1].LetterSuffix)
	assert.Equal(t, models.DefectTypeService, records[1].DefectType)
	assert.Equal(t, []string{"DER 9.0m: Coarse deposits"}, records[1].RawObservations)

	// Non-defect fields inherit from the template.
	for _, record := range records {
		assert.Equal(t, "MH1", record.StartMH)
		assert.Equal(t, "MH2", record.FinishMH)
		assert.Equal(t, "utilities", record.Sector)
	}
}

func TestSplitServiceFirstKeepsBaseNumber(t *testing.T) {
	s := newTestSplitter()

	records := s.Split("DER 9.0m: Coarse deposits; FC 4.2m: Circumferential fracture", 7, models.SectionRecord{})
	require.Len(t, records, 2)
	assert.Equal(t, models.DefectTypeService, records[0].DefectType)
	assert.Equal(t, "", records[0].LetterSuffix)
	assert.Equal(t, models.DefectTypeStructural, records[1].DefectType)
	assert.Equal(t, "a", records[1].LetterSuffix)
}

func TestSplitSingleTypeStaysWhole(t *testing.T) {
	s := newTestSplitter()

	records := s.Split("FC 4.2m: Circumferential fracture; CR 6.0m: Crack", 3, models.SectionRecord{})
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].ItemNo)
	assert.Equal(t, "", records[0].LetterSuffix)
	assert.Len(t, records[0].RawObservations, 2)
}

func TestSplitIdempotent(t *testing.T) {
	s := newTestSplitter()
	text := "FC 4.2m: Circumferential fracture; DER 9.0m: Coarse deposits; JDS 2.0m: Joint displaced slight"

	first := s.Split(text, 22, models.SectionRecord{})
	for i := 0; i < 10; i++ {
		again := s.Split(text, 22, models.SectionRecord{})
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].LetterSuffix, again[j].LetterSuffix)
			assert.Equal(t, first[j].DefectType, again[j].DefectType)
			assert.Equal(t, first[j].RawObservations, again[j].RawObservations)
		}
	}
}

func TestJoinItemNo(t *testing.T) {
	assert.Equal(t, "22", JoinItemNo(22, ""))
	assert.Equal(t, "22a", JoinItemNo(22, "a"))
}
