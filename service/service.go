// Package service orchestrates the classification pipeline per upload:
// it owns the versioned, append-only rules runs, the section ingestion
// path (including multi-defect splitting) and dashboard composition
// from the latest successful run.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"defect-classify-pipeline/classifier"
	"defect-classify-pipeline/composer"
	"defect-classify-pipeline/config"
	"defect-classify-pipeline/database"
	"defect-classify-pipeline/metrics"
	"defect-classify-pipeline/models"
	"defect-classify-pipeline/parser"
	"defect-classify-pipeline/splitter"
	"defect-classify-pipeline/standards"
)

// Version constants stamped onto every rules run.
const (
	ParserVersion  = parser.Version
	RulesetVersion = "2025.2"
)

// defaultObservation is synthesized for sections with zero raw
// observations so that every section has at least one observation-rule
// row per run.
const defaultObservation = "No action required. No observations recorded for this section."

// Service is the versioned rules runner.
type Service struct {
	cfg   *config.Config
	db    *database.Database
	std   standards.Provider
	cls   *classifier.Classifier
	split *splitter.Splitter
	comp  *composer.Composer

	// runLocks serializes run creation per upload so that the "exactly
	// one latest successful run" invariant holds for dashboard reads.
	runLocks sync.Map // uploadID -> *sync.Mutex
}

// New builds the runner, hydrating adoption standards from persistence
// where available.
func New(cfg *config.Config, db *database.Database) *Service {
	var std standards.Provider
	rows, err := db.GetAdoptionStandards()
	if err != nil {
		log.WithError(err).Warn("could not load adoption standards, using built-in fallback table")
		std = standards.NewStaticProvider()
	} else {
		std = standards.NewProviderWithAdoption(rows)
	}

	return &Service{
		cfg:   cfg,
		db:    db,
		std:   std,
		cls:   classifier.New(std),
		split: splitter.New(std),
		comp:  composer.New(std),
	}
}

// Standards exposes the hydrated reference-data provider.
func (s *Service) Standards() standards.Provider {
	return s.std
}

// Classifier exposes the classifier for stateless per-request use.
func (s *Service) Classifier() *classifier.Classifier {
	return s.cls
}

func (s *Service) uploadLock(uploadID string) *sync.Mutex {
	lock, _ := s.runLocks.LoadOrStore(uploadID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// IngestSection stores a new section for an upload, splitting it into
// lettered sub-sections when its text carries both structural and
// service defects. Returns the stored records with ids assigned.
func (s *Service) IngestSection(uploadID string, itemNo int, rawText string, template models.SectionRecord) ([]models.SectionRecord, error) {
	template.UploadID = uploadID
	if template.Sector == "" {
		template.Sector = s.cfg.DefaultSector
	}

	if s.split.ShouldSplit(rawText) {
		log.WithField("upload_id", uploadID).
			WithField("item_no", itemNo).
			Info("section carries structural and service defects, splitting")
	}
	records := s.split.Split(rawText, itemNo, template)
	for i := range records {
		id, err := s.db.InsertSection(&records[i])
		if err != nil {
			return nil, fmt.Errorf("failed to store section %s: %w", splitter.JoinItemNo(records[i].ItemNo, records[i].LetterSuffix), err)
		}
		records[i].ID = id
		metrics.SectionsIngested.Inc()
	}
	return records, nil
}

// StartRun executes one rules run for an upload. A brand-new run row
// is always inserted; prior runs are never touched. On any processing
// error the run is marked failed with the captured error text and the
// rows already written stay in place.
func (s *Service) StartRun(ctx context.Context, uploadID string) (*models.RulesRun, error) {
	lock := s.uploadLock(uploadID)
	lock.Lock()
	defer lock.Unlock()

	run := &models.RulesRun{
		ID:             uuid.NewString(),
		UploadID:       uploadID,
		ParserVersion:  ParserVersion,
		RulesetVersion: RulesetVersion,
		StartedAt:      time.Now().UTC(),
		Status:         models.RunStatusRunning,
	}
	if err := s.db.InsertRulesRun(run); err != nil {
		return nil, err
	}
	metrics.RunsStarted.Inc()
	logger := log.WithField("upload_id", uploadID).WithField("rules_run_id", run.ID)
	logger.Info("rules run started")

	if err := s.processUpload(ctx, run); err != nil {
		s.finalize(run, models.RunStatusFailed, err.Error())
		logger.WithError(err).Error("rules run failed")
		return run, nil
	}

	s.finalize(run, models.RunStatusSuccess, "")
	logger.Info("rules run succeeded")
	return run, nil
}

func (s *Service) processUpload(ctx context.Context, run *models.RulesRun) error {
	sections, err := s.db.GetSectionsByUpload(run.UploadID)
	if err != nil {
		return err
	}

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}
		if err := s.processSection(run, section); err != nil {
			return fmt.Errorf("section %d: %w", section.ID, err)
		}
	}
	return nil
}

func (s *Service) processSection(run *models.RulesRun, section models.SectionRecord) error {
	observations := section.RawObservations
	if len(observations) == 0 {
		observations = []string{defaultObservation}
	}

	for idx, raw := range observations {
		started := time.Now()
		result := s.cls.ClassifyWithOptions(raw, section.Sector, classifier.Options{
			SecstatGrades: section.SecstatGrades,
		})
		metrics.ClassifyDuration.Observe(time.Since(started).Seconds())

		rule, err := s.observationRule(run.ID, section.ID, idx, result)
		if err != nil {
			return err
		}
		if err := s.db.InsertObservationRule(rule); err != nil {
			return err
		}
		metrics.ObservationRulesWritten.Inc()
	}
	return nil
}

func (s *Service) observationRule(runID string, sectionID int64, idx int, result models.ClassificationResult) (*models.ObservationRule, error) {
	mscc5, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classification: %w", err)
	}
	pricing, err := json.Marshal(map[string]any{
		"severity_grade": result.SeverityGrade,
		"estimated_cost": result.EstimatedCost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pricing: %w", err)
	}

	opActionType := 0
	if entry, ok := s.std.DefectCode(result.DefectCode); ok {
		opActionType = entry.ActionType
	}

	return &models.ObservationRule{
		RulesRunID:         runID,
		SectionID:          sectionID,
		ObservationIdx:     idx,
		MSCC5JSON:          string(mscc5),
		DefectType:         result.DefectType,
		SeverityGrade:      result.SeverityGrade,
		RecommendationText: result.Recommendations,
		Adoptability:       result.Adoptable,
		OpActionType:       opActionType,
		PricingJSON:        string(pricing),
	}, nil
}

func (s *Service) finalize(run *models.RulesRun, status, errorText string) {
	finishedAt := time.Now().UTC()
	if err := s.db.FinalizeRulesRun(run.ID, status, errorText, finishedAt); err != nil {
		log.WithError(err).WithField("rules_run_id", run.ID).Error("failed to finalize rules run")
		return
	}
	run.Status = status
	run.ErrorText = errorText
	run.FinishedAt = &finishedAt
	metrics.RunsCompleted.WithLabelValues(status).Inc()
}

// LatestRun returns the most recent run for an upload regardless of
// status, or nil when the upload has never been run.
func (s *Service) LatestRun(uploadID string) (*models.RulesRun, error) {
	return s.db.GetLatestRun(uploadID)
}
