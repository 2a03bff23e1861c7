package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"defect-classify-pipeline/classifier"
	"defect-classify-pipeline/composer"
	"defect-classify-pipeline/config"
	"defect-classify-pipeline/database"
	"defect-classify-pipeline/models"
	"defect-classify-pipeline/splitter"
	"defect-classify-pipeline/standards"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	std := standards.NewStaticProvider()
	svc := &Service{
		cfg:   &config.Config{DefaultSector: "utilities"},
		db:    database.NewFromDB(db),
		std:   std,
		cls:   classifier.New(std),
		split: splitter.New(std),
		comp:  composer.New(std),
	}
	return svc, mock, func() { db.Close() }
}

func sectionColumns() []string {
	return []string{
		"id", "upload_id", "item_no", "letter_suffix", "sector",
		"start_mh", "finish_mh", "pipe_size", "pipe_material", "total_length",
		"raw_observations", "secstat_grades", "defect_type",
	}
}

func TestStartRunSuccess(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	// Two sections: one with an observation, one with none. The empty
	// one still gets a synthesized observation-rule row.
	sections := sqlmock.NewRows(sectionColumns()).
		AddRow(1, "upload-1", 22, "", "utilities", "MH1", "MH2", "150", "VC", "45.60",
			`["DER 13.07m: Settled deposits fine 20% cross-sectional area loss"]`, nil, "").
		AddRow(2, "upload-1", 23, "", "utilities", "MH2", "MH3", "150", "VC", "30.00",
			`[]`, nil, "")

	mock.ExpectExec("INSERT INTO rules_runs").
		WithArgs(sqlmock.AnyArg(), "upload-1", ParserVersion, RulesetVersion, sqlmock.AnyArg(), models.RunStatusRunning).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM sections").
		WithArgs("upload-1").
		WillReturnRows(sections)
	mock.ExpectExec("INSERT INTO observation_rules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO observation_rules").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE rules_runs").
		WithArgs(models.RunStatusSuccess, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := svc.StartRun(context.Background(), "upload-1")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.Status != models.RunStatusSuccess {
		t.Errorf("expected success, got %s (%s)", run.Status, run.ErrorText)
	}
	if run.ParserVersion != ParserVersion || run.RulesetVersion != RulesetVersion {
		t.Errorf("run not stamped with versions: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Errorf("expected finished_at on a finalized run")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStartRunPartialFailureKeepsRun(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	sections := sqlmock.NewRows(sectionColumns()).
		AddRow(1, "upload-1", 22, "", "utilities", "", "", "", "", "",
			`["FC 4.2m: Circumferential fracture"]`, nil, "").
		AddRow(2, "upload-1", 23, "", "utilities", "", "", "", "", "",
			`["DER 13.07m: Settled deposits"]`, nil, "")

	mock.ExpectExec("INSERT INTO rules_runs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM sections").
		WithArgs("upload-1").
		WillReturnRows(sections)
	mock.ExpectExec("INSERT INTO observation_rules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO observation_rules").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("UPDATE rules_runs").
		WithArgs(models.RunStatusFailed, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// A processing failure is not a StartRun error: the run row itself
	// is the record of what happened, with the rows already written
	// left in place.
	run, err := svc.StartRun(context.Background(), "upload-1")
	if err != nil {
		t.Fatalf("StartRun should report failure via the run, got error: %v", err)
	}
	if run.Status != models.RunStatusFailed {
		t.Errorf("expected failed status, got %s", run.Status)
	}
	if run.ErrorText == "" {
		t.Errorf("expected captured error text on failed run")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStartRunCancelledContext(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	sections := sqlmock.NewRows(sectionColumns()).
		AddRow(1, "upload-1", 22, "", "utilities", "", "", "", "", "",
			`["FC 4.2m: Circumferential fracture"]`, nil, "")

	mock.ExpectExec("INSERT INTO rules_runs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM sections").
		WithArgs("upload-1").
		WillReturnRows(sections)
	mock.ExpectExec("UPDATE rules_runs").
		WithArgs(models.RunStatusFailed, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := svc.StartRun(ctx, "upload-1")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.Status != models.RunStatusFailed {
		t.Errorf("expected cancelled run to finish failed, got %s", run.Status)
	}
}

func TestIngestSectionDefaultsSector(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	mock.ExpectExec("INSERT INTO sections").
		WillReturnResult(sqlmock.NewResult(7, 1))

	records, err := svc.IngestSection("upload-1", 22, "DER 13.07m: Settled deposits", models.SectionRecord{})
	if err != nil {
		t.Fatalf("IngestSection failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Sector != "utilities" {
		t.Errorf("expected default sector utilities, got %s", records[0].Sector)
	}
	if records[0].ID != 7 {
		t.Errorf("expected assigned id 7, got %d", records[0].ID)
	}
}

func TestIngestSectionSplitsDualTypeText(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	mock.ExpectExec("INSERT INTO sections").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO sections").
		WillReturnResult(sqlmock.NewResult(12, 1))

	text := "FC 4.2m: Circumferential fracture; DER 13.07m: Settled deposits"
	records, err := svc.IngestSection("upload-1", 22, text, models.SectionRecord{})
	if err != nil {
		t.Fatalf("IngestSection failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for dual-type text, got %d", len(records))
	}
	if records[0].LetterSuffix != "" || records[1].LetterSuffix != "a" {
		t.Errorf("expected suffixes \"\" and \"a\", got %q and %q", records[0].LetterSuffix, records[1].LetterSuffix)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLatestRunNone(t *testing.T) {
	svc, mock, done := newTestService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM rules_runs").
		WithArgs("upload-9").
		WillReturnError(sql.ErrNoRows)

	run, err := svc.LatestRun("upload-9")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}
