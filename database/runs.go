package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"defect-classify-pipeline/models"
)

// ErrNoSuccessfulRun is returned when an upload has no run with
// status=success.
var ErrNoSuccessfulRun = errors.New("no successful rules run for upload")

// InsertRulesRun inserts a brand-new run row. Runs are append-only: a
// reclassification always gets a new row, never an update of an old
// one.
func (d *Database) InsertRulesRun(run *models.RulesRun) error {
	_, err := d.db.Exec(`
		INSERT INTO rules_runs (id, upload_id, parser_version, ruleset_version, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.UploadID, run.ParserVersion, run.RulesetVersion, run.StartedAt, run.Status)
	if err != nil {
		return fmt.Errorf("failed to insert rules run: %w", err)
	}
	return nil
}

// FinalizeRulesRun sets the terminal status of a run. This is the only
// mutation a run row ever sees, and only while its status is still
// running.
func (d *Database) FinalizeRulesRun(runID, status, errorText string, finishedAt time.Time) error {
	result, err := d.db.Exec(`
		UPDATE rules_runs
		SET status = ?, error_text = ?, finished_at = ?
		WHERE id = ? AND status = 'running'`,
		status, errorText, finishedAt, runID)
	if err != nil {
		return fmt.Errorf("failed to finalize rules run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows != 1 {
		return fmt.Errorf("rules run %s not in running state, refusing to finalize", runID)
	}
	return nil
}

// InsertObservationRule writes one classified observation row for a
// run.
func (d *Database) InsertObservationRule(rule *models.ObservationRule) error {
	_, err := d.db.Exec(`
		INSERT INTO observation_rules
			(rules_run_id, section_id, observation_idx, mscc5_json, defect_type,
			 severity_grade, recommendation_text, adoptability, op_action_type, pricing_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.RulesRunID, rule.SectionID, rule.ObservationIdx, rule.MSCC5JSON, rule.DefectType,
		rule.SeverityGrade, rule.RecommendationText, rule.Adoptability, rule.OpActionType, rule.PricingJSON)
	if err != nil {
		return fmt.Errorf("failed to insert observation rule: %w", err)
	}
	return nil
}

// GetLatestSuccessfulRun returns the most recent run with
// status=success for an upload, or ErrNoSuccessfulRun.
func (d *Database) GetLatestSuccessfulRun(uploadID string) (*models.RulesRun, error) {
	query := `
		SELECT id, upload_id, parser_version, ruleset_version, started_at, finished_at, status, COALESCE(error_text, '')
		FROM rules_runs
		WHERE upload_id = ? AND status = 'success'
		ORDER BY finished_at DESC, started_at DESC
		LIMIT 1`

	run := &models.RulesRun{}
	var finishedAt sql.NullTime
	err := d.db.QueryRow(query, uploadID).Scan(
		&run.ID, &run.UploadID, &run.ParserVersion, &run.RulesetVersion,
		&run.StartedAt, &finishedAt, &run.Status, &run.ErrorText)
	if err == sql.ErrNoRows {
		return nil, ErrNoSuccessfulRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest successful run: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}

// GetLatestRun returns the most recent run for an upload regardless of
// status.
func (d *Database) GetLatestRun(uploadID string) (*models.RulesRun, error) {
	query := `
		SELECT id, upload_id, parser_version, ruleset_version, started_at, finished_at, status, COALESCE(error_text, '')
		FROM rules_runs
		WHERE upload_id = ?
		ORDER BY started_at DESC
		LIMIT 1`

	run := &models.RulesRun{}
	var finishedAt sql.NullTime
	err := d.db.QueryRow(query, uploadID).Scan(
		&run.ID, &run.UploadID, &run.ParserVersion, &run.RulesetVersion,
		&run.StartedAt, &finishedAt, &run.Status, &run.ErrorText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}

// GetObservationRules returns all observation rules written for a run,
// in write order.
func (d *Database) GetObservationRules(runID string) ([]models.ObservationRule, error) {
	query := `
		SELECT id, rules_run_id, section_id, observation_idx, COALESCE(mscc5_json, ''),
		       defect_type, severity_grade, COALESCE(recommendation_text, ''),
		       adoptability, op_action_type, COALESCE(pricing_json, '')
		FROM observation_rules
		WHERE rules_run_id = ?
		ORDER BY id ASC`

	rows, err := d.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query observation rules: %w", err)
	}
	defer rows.Close()

	var rules []models.ObservationRule
	for rows.Next() {
		var r models.ObservationRule
		if err := rows.Scan(
			&r.ID, &r.RulesRunID, &r.SectionID, &r.ObservationIdx, &r.MSCC5JSON,
			&r.DefectType, &r.SeverityGrade, &r.RecommendationText,
			&r.Adoptability, &r.OpActionType, &r.PricingJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan observation rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over observation rule rows: %w", err)
	}
	return rules, nil
}

// GetUploadsMissingSuccessfulRun finds uploads that have sections but
// no successful run yet. Drives the scheduled backfill sweep.
func (d *Database) GetUploadsMissingSuccessfulRun(limit int) ([]string, error) {
	query := `
		SELECT DISTINCT s.upload_id
		FROM sections s
		LEFT JOIN rules_runs r ON r.upload_id = s.upload_id AND r.status = 'success'
		WHERE r.id IS NULL
		ORDER BY s.upload_id ASC
		LIMIT ?`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads missing runs: %w", err)
	}
	defer rows.Close()

	var uploads []string
	for rows.Next() {
		var uploadID string
		if err := rows.Scan(&uploadID); err != nil {
			return nil, fmt.Errorf("failed to scan upload id: %w", err)
		}
		uploads = append(uploads, uploadID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over upload rows: %w", err)
	}
	return uploads, nil
}
