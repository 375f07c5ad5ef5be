package storage

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
)

// DBFileName is the SQLite database file created in the output directory
const DBFileName = "exams.db"

// SQLiteExporter persists exams into a three-table relational schema.
// Each exam is written in a single transaction: a failed export never
// leaves orphaned question or choice rows.
type SQLiteExporter struct {
	db *sqlx.DB
}

// NewSQLiteExporter opens (or creates) the database in dir and ensures
// the schema exists
func NewSQLiteExporter(dir string) (*SQLiteExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory",
			goerr.V("dir", dir))
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database",
			goerr.V("path", dbPath))
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to enable foreign keys")
	}

	// SQLite supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteExporter{db: db}, nil
}

func initializeSchema(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS exams (
			exam_id TEXT PRIMARY KEY,
			exam_name TEXT NOT NULL,
			level_name TEXT NOT NULL,
			subject_name TEXT NOT NULL,
			question_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exam_id TEXT NOT NULL,
			question_number INTEGER NOT NULL,
			question_id TEXT NOT NULL,
			question_text TEXT NOT NULL,
			FOREIGN KEY (exam_id) REFERENCES exams(exam_id)
		)`,
		`CREATE TABLE IF NOT EXISTS choices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			choice_number INTEGER NOT NULL,
			choice_text TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			FOREIGN KEY (question_id) REFERENCES questions(id)
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return goerr.Wrap(err, "failed to create schema")
		}
	}
	return nil
}

func (x *SQLiteExporter) Name() string {
	return "sqlite"
}

// Export replaces all rows of the exam in one transaction
func (x *SQLiteExporter) Export(ctx context.Context, record *model.ExamRecord) error {
	meta := record.Metadata

	tx, err := x.db.BeginTxx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteExamRows(tx, meta.ExamID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exams (exam_id, exam_name, level_name, subject_name, question_count)
		 VALUES (?, ?, ?, ?, ?)`,
		meta.ExamID, meta.ExamName, meta.LevelName, meta.SubjectName, meta.QuestionCount,
	); err != nil {
		return goerr.Wrap(err, "failed to insert exam row",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
	}

	for _, q := range record.Questions {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO questions (exam_id, question_number, question_id, question_text)
			 VALUES (?, ?, ?, ?)`,
			meta.ExamID, q.QuestionNumber, q.QuestionID, q.QuestionText,
		)
		if err != nil {
			return goerr.Wrap(err, "failed to insert question row",
				goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
		}

		rowID, err := res.LastInsertId()
		if err != nil {
			return goerr.Wrap(err, "failed to get question row ID",
				goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
		}

		for _, c := range q.Choices {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO choices (question_id, choice_number, choice_text, is_correct)
				 VALUES (?, ?, ?, ?)`,
				rowID, c.ChoiceNumber, c.ChoiceText, c.IsCorrect,
			); err != nil {
				return goerr.Wrap(err, "failed to insert choice row",
					goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit exam transaction",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", meta.ExamID))
	}
	return nil
}

// deleteExamRows removes any previous rows of the exam so re-export is
// idempotent. Runs inside the caller's transaction.
func deleteExamRows(tx *sqlx.Tx, examID string) error {
	if _, err := tx.Exec(
		`DELETE FROM choices WHERE question_id IN
		 (SELECT id FROM questions WHERE exam_id = ?)`, examID); err != nil {
		return goerr.Wrap(err, "failed to delete choice rows",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", examID))
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE exam_id = ?`, examID); err != nil {
		return goerr.Wrap(err, "failed to delete question rows",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", examID))
	}
	if _, err := tx.Exec(`DELETE FROM exams WHERE exam_id = ?`, examID); err != nil {
		return goerr.Wrap(err, "failed to delete exam row",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", examID))
	}
	return nil
}

func (x *SQLiteExporter) Exists(examID int) (bool, error) {
	var count int
	err := x.db.Get(&count,
		"SELECT COUNT(*) FROM exams WHERE exam_id = ?", strconv.Itoa(examID))
	if err != nil {
		return false, goerr.Wrap(err, "failed to query exam existence",
			goerr.V("exam_id", examID))
	}
	return count > 0, nil
}

// Close closes the underlying database connection
func (x *SQLiteExporter) Close() error {
	return x.db.Close()
}
