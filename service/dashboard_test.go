package service

import (
	"testing"

	"defect-classify-pipeline/models"
)

func TestAggregateSectionEmpty(t *testing.T) {
	row := AggregateSection(nil)
	if row.SeverityGrade != 0 {
		t.Errorf("expected grade 0, got %d", row.SeverityGrade)
	}
	if row.DefectType != models.DefectTypeService {
		t.Errorf("expected service type, got %s", row.DefectType)
	}
	if row.Adoptability != models.AdoptableYes {
		t.Errorf("expected adoptable Yes, got %s", row.Adoptability)
	}
	if row.Recommendations != "" {
		t.Errorf("expected empty recommendations, got %q", row.Recommendations)
	}
}

func TestAggregateSectionMaxGrade(t *testing.T) {
	rules := []models.ObservationRule{
		{DefectType: models.DefectTypeService, SeverityGrade: 2, Adoptability: models.AdoptableYes},
		{DefectType: models.DefectTypeService, SeverityGrade: 4, Adoptability: models.AdoptableYes},
		{DefectType: models.DefectTypeService, SeverityGrade: 3, Adoptability: models.AdoptableYes},
	}
	row := AggregateSection(rules)
	if row.SeverityGrade != 4 {
		t.Errorf("expected max grade 4, got %d", row.SeverityGrade)
	}
}

func TestAggregateSectionStructuralWins(t *testing.T) {
	rules := []models.ObservationRule{
		{DefectType: models.DefectTypeService, SeverityGrade: 4, Adoptability: models.AdoptableYes},
		{DefectType: models.DefectTypeStructural, SeverityGrade: 2, Adoptability: models.AdoptableYes},
	}
	row := AggregateSection(rules)
	if row.DefectType != models.DefectTypeStructural {
		t.Errorf("one structural rule should make the row structural, got %s", row.DefectType)
	}
}

func TestAggregateSectionDistinctRecommendations(t *testing.T) {
	rules := []models.ObservationRule{
		{DefectType: models.DefectTypeService, SeverityGrade: 3, Adoptability: models.AdoptableYes,
			RecommendationText: "Cleanse section and resurvey to confirm condition"},
		{DefectType: models.DefectTypeService, SeverityGrade: 3, Adoptability: models.AdoptableYes,
			RecommendationText: "Cleanse section and resurvey to confirm condition"},
		{DefectType: models.DefectTypeStructural, SeverityGrade: 4, Adoptability: models.AdoptableNo,
			RecommendationText: "Install patch liner at defect"},
		{DefectType: models.DefectTypeService, SeverityGrade: 1, Adoptability: models.AdoptableYes,
			RecommendationText: "  "},
	}
	row := AggregateSection(rules)
	want := "Cleanse section and resurvey to confirm condition. Install patch liner at defect"
	if row.Recommendations != want {
		t.Errorf("expected %q, got %q", want, row.Recommendations)
	}
}

func TestAggregateSectionAdoptabilityNoWins(t *testing.T) {
	rules := []models.ObservationRule{
		{DefectType: models.DefectTypeService, SeverityGrade: 2, Adoptability: models.AdoptableYes},
		{DefectType: models.DefectTypeService, SeverityGrade: 3, Adoptability: models.AdoptableConditional},
		{DefectType: models.DefectTypeStructural, SeverityGrade: 5, Adoptability: models.AdoptableNo},
	}
	row := AggregateSection(rules)
	if row.Adoptability != models.AdoptableNo {
		t.Errorf("any No should make the row No, got %s", row.Adoptability)
	}
}

func TestAggregateSectionNeverConditional(t *testing.T) {
	rules := []models.ObservationRule{
		{DefectType: models.DefectTypeService, SeverityGrade: 3, Adoptability: models.AdoptableConditional},
		{DefectType: models.DefectTypeService, SeverityGrade: 2, Adoptability: models.AdoptableConditional},
	}
	row := AggregateSection(rules)
	if row.Adoptability != models.AdoptableYes && row.Adoptability != models.AdoptableNo {
		t.Errorf("aggregate adoptability must collapse to Yes or No, got %s", row.Adoptability)
	}
}
