// Package database is the MySQL persistence boundary of the pipeline:
// sections and their raw observations are read from here, rules runs
// and observation rules are written here. Run and observation-rule
// rows are append-only; nothing in this package updates a finished
// run's rows.
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"defect-classify-pipeline/config"
	"defect-classify-pipeline/models"
)

// Database wraps the MySQL connection.
type Database struct {
	db *sql.DB
}

// NewDatabase opens the MySQL connection described by cfg, retrying
// the initial ping with exponential backoff.
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	waitInterval := 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break
		} else {
			log.WithError(err).Warnf("database connection failed, retrying in %v", waitInterval)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewFromDB wraps an existing *sql.DB. Used by tests.
func NewFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// GetDB returns the underlying connection.
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateTables creates the pipeline tables if they don't exist.
func (d *Database) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sections (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			upload_id VARCHAR(64) NOT NULL,
			item_no INT NOT NULL,
			letter_suffix VARCHAR(4) NOT NULL DEFAULT '',
			sector VARCHAR(32) NOT NULL DEFAULT 'utilities',
			start_mh VARCHAR(32) DEFAULT '',
			finish_mh VARCHAR(32) DEFAULT '',
			pipe_size VARCHAR(32) DEFAULT '',
			pipe_material VARCHAR(64) DEFAULT '',
			total_length VARCHAR(32) DEFAULT '',
			raw_observations JSON,
			secstat_grades JSON,
			defect_type VARCHAR(16) DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_sections_upload (upload_id),
			UNIQUE KEY uniq_sections_item (upload_id, item_no, letter_suffix)
		)`,
		`CREATE TABLE IF NOT EXISTS rules_runs (
			id VARCHAR(36) PRIMARY KEY,
			upload_id VARCHAR(64) NOT NULL,
			parser_version VARCHAR(16) NOT NULL,
			ruleset_version VARCHAR(16) NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NULL DEFAULT NULL,
			status ENUM('running', 'success', 'failed') NOT NULL DEFAULT 'running',
			error_text TEXT,
			INDEX idx_rules_runs_upload (upload_id),
			INDEX idx_rules_runs_status (status)
		)`,
		`CREATE TABLE IF NOT EXISTS observation_rules (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			rules_run_id VARCHAR(36) NOT NULL,
			section_id BIGINT NOT NULL,
			observation_idx INT NOT NULL,
			mscc5_json JSON,
			defect_type VARCHAR(16) NOT NULL,
			severity_grade INT NOT NULL,
			recommendation_text TEXT,
			adoptability VARCHAR(16) NOT NULL,
			op_action_type INT NOT NULL DEFAULT 0,
			pricing_json JSON,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_observation_rules_run (rules_run_id),
			INDEX idx_observation_rules_section (section_id)
		)`,
		`CREATE TABLE IF NOT EXISTS adoption_standards (
			sector VARCHAR(32) PRIMARY KEY,
			belly_threshold INT NOT NULL,
			standard_name VARCHAR(255) NOT NULL,
			authority VARCHAR(255) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS user_cost_bands (
			user_id VARCHAR(64) NOT NULL,
			grade INT NOT NULL,
			band VARCHAR(64) NOT NULL,
			PRIMARY KEY (user_id, grade)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// GetSectionsByUpload returns an upload's sections ordered by item
// number and suffix so processing order is stable.
func (d *Database) GetSectionsByUpload(uploadID string) ([]models.SectionRecord, error) {
	query := `
		SELECT id, upload_id, item_no, letter_suffix, sector,
		       start_mh, finish_mh, pipe_size, pipe_material, total_length,
		       raw_observations, secstat_grades, defect_type
		FROM sections
		WHERE upload_id = ?
		ORDER BY item_no ASC, letter_suffix ASC`

	rows, err := d.db.Query(query, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.SectionRecord
	for rows.Next() {
		var s models.SectionRecord
		var rawObs, secstat sql.NullString
		if err := rows.Scan(
			&s.ID, &s.UploadID, &s.ItemNo, &s.LetterSuffix, &s.Sector,
			&s.StartMH, &s.FinishMH, &s.PipeSize, &s.PipeMaterial, &s.TotalLength,
			&rawObs, &secstat, &s.DefectType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if rawObs.Valid && rawObs.String != "" {
			if err := json.Unmarshal([]byte(rawObs.String), &s.RawObservations); err != nil {
				log.WithError(err).WithField("section_id", s.ID).Warn("unreadable raw_observations json")
			}
		}
		if secstat.Valid && secstat.String != "" && secstat.String != "null" {
			var grades models.SecstatGrades
			if err := json.Unmarshal([]byte(secstat.String), &grades); err != nil {
				log.WithError(err).WithField("section_id", s.ID).Warn("unreadable secstat_grades json")
			} else {
				s.SecstatGrades = &grades
			}
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over section rows: %w", err)
	}
	return sections, nil
}

// InsertSection persists one section record and returns its id.
func (d *Database) InsertSection(s *models.SectionRecord) (int64, error) {
	rawObs, err := json.Marshal(s.RawObservations)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal raw observations: %w", err)
	}
	var secstat any
	if s.SecstatGrades != nil {
		encoded, err := json.Marshal(s.SecstatGrades)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal secstat grades: %w", err)
		}
		secstat = string(encoded)
	}

	result, err := d.db.Exec(`
		INSERT INTO sections
			(upload_id, item_no, letter_suffix, sector, start_mh, finish_mh,
			 pipe_size, pipe_material, total_length, raw_observations, secstat_grades, defect_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UploadID, s.ItemNo, s.LetterSuffix, s.Sector, s.StartMH, s.FinishMH,
		s.PipeSize, s.PipeMaterial, s.TotalLength, string(rawObs), secstat, s.DefectType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert section: %w", err)
	}
	return result.LastInsertId()
}

// GetAdoptionStandards loads the persisted per-sector adoption
// standards. Missing sectors are recovered by the caller from the
// built-in fallback table.
func (d *Database) GetAdoptionStandards() (map[string]models.AdoptionStandard, error) {
	rows, err := d.db.Query(`SELECT sector, belly_threshold, standard_name, authority FROM adoption_standards`)
	if err != nil {
		return nil, fmt.Errorf("failed to query adoption standards: %w", err)
	}
	defer rows.Close()

	standards := make(map[string]models.AdoptionStandard)
	for rows.Next() {
		var std models.AdoptionStandard
		if err := rows.Scan(&std.Sector, &std.BellyThreshold, &std.StandardName, &std.Authority); err != nil {
			return nil, fmt.Errorf("failed to scan adoption standard: %w", err)
		}
		standards[std.Sector] = std
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over adoption standard rows: %w", err)
	}
	return standards, nil
}

// GetUserCostBands loads a user's cost band overrides keyed by grade.
func (d *Database) GetUserCostBands(userID string) (map[int]string, error) {
	rows, err := d.db.Query(`SELECT grade, band FROM user_cost_bands WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user cost bands: %w", err)
	}
	defer rows.Close()

	bands := make(map[int]string)
	for rows.Next() {
		var grade int
		var band string
		if err := rows.Scan(&grade, &band); err != nil {
			return nil, fmt.Errorf("failed to scan cost band: %w", err)
		}
		bands[grade] = band
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over cost band rows: %w", err)
	}
	return bands, nil
}
