package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"

	"defect-classify-pipeline/database"
	"defect-classify-pipeline/models"
)

// Dashboard composes the per-section dashboard view from the latest
// successful run of an upload. When no successful run exists one is
// synthesized on the fly (backfill behavior for uploads predating the
// rules-run model) rather than returning an empty dashboard.
func (s *Service) Dashboard(ctx context.Context, uploadID string) (*models.DashboardView, error) {
	run, err := s.db.GetLatestSuccessfulRun(uploadID)
	if errors.Is(err, database.ErrNoSuccessfulRun) {
		log.WithField("upload_id", uploadID).Info("no successful run for upload, synthesizing one")
		run, err = s.StartRun(ctx, uploadID)
		if err != nil {
			return nil, err
		}
		if run.Status != models.RunStatusSuccess {
			return nil, fmt.Errorf("synthesized rules run %s failed: %s", run.ID, run.ErrorText)
		}
	} else if err != nil {
		return nil, err
	}

	rules, err := s.db.GetObservationRules(run.ID)
	if err != nil {
		return nil, err
	}
	sections, err := s.db.GetSectionsByUpload(uploadID)
	if err != nil {
		return nil, err
	}
	sectionByID := make(map[int64]models.SectionRecord, len(sections))
	for _, section := range sections {
		sectionByID[section.ID] = section
	}

	grouped := make(map[int64][]models.ObservationRule)
	order := make([]int64, 0, len(sections))
	for _, rule := range rules {
		if _, seen := grouped[rule.SectionID]; !seen {
			order = append(order, rule.SectionID)
		}
		grouped[rule.SectionID] = append(grouped[rule.SectionID], rule)
	}

	rows := make([]models.DashboardRow, 0, len(order))
	for _, sectionID := range order {
		row := AggregateSection(grouped[sectionID])
		row.SectionID = sectionID
		if section, ok := sectionByID[sectionID]; ok {
			row.ItemNo = section.ItemNo
			row.LetterSuffix = section.LetterSuffix
		}
		row.EstimatedCost = s.comp.CostBand(row.SeverityGrade, nil)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ItemNo != rows[j].ItemNo {
			return rows[i].ItemNo < rows[j].ItemNo
		}
		return rows[i].LetterSuffix < rows[j].LetterSuffix
	})

	return &models.DashboardView{
		UploadID:       uploadID,
		RulesRunID:     run.ID,
		RulesetVersion: run.RulesetVersion,
		DerivedAt:      time.Now().UTC(),
		Rows:           rows,
	}, nil
}

// AggregateSection collapses a section's observation rules to one
// dashboard row: grade is the max across rules, type is structural if
// any rule is structural, recommendations are the distinct non-empty
// texts joined with ". ", and adoptability is No if any rule says No,
// else Yes. Conditional never appears at the aggregate level.
func AggregateSection(rules []models.ObservationRule) models.DashboardRow {
	row := models.DashboardRow{
		DefectType:   models.DefectTypeService,
		Adoptability: models.AdoptableYes,
	}

	var recommendations []string
	seen := make(map[string]struct{})
	for _, rule := range rules {
		if rule.SeverityGrade > row.SeverityGrade {
			row.SeverityGrade = rule.SeverityGrade
		}
		if rule.DefectType == models.DefectTypeStructural {
			row.DefectType = models.DefectTypeStructural
		}
		text := strings.TrimSpace(rule.RecommendationText)
		if text != "" {
			if _, dup := seen[text]; !dup {
				seen[text] = struct{}{}
				recommendations = append(recommendations, text)
			}
		}
		if rule.Adoptability == models.AdoptableNo {
			row.Adoptability = models.AdoptableNo
		}
	}
	row.Recommendations = strings.Join(recommendations, ". ")
	return row
}
