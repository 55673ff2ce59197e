package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/campushq/naitei/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		description TEXT,
		required_skills TEXT,
		location TEXT,
		job_type TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS knowledge_entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, created_at);

	CREATE TABLE IF NOT EXISTS certificates (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		job_title TEXT NOT NULL,
		company TEXT NOT NULL,
		feedback TEXT,
		issued_at TEXT,
		valid_until TEXT,
		verification_code TEXT NOT NULL,
		pdf_path TEXT,
		qr_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS vector_slots (
		slot INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		ref_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vector_slots_kind ON vector_slots(kind);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertJob inserts or replaces a job.
func (s *SQLiteStorage) UpsertJob(ctx context.Context, job *models.Job) error {
	skillsJSON, err := json.Marshal(job.RequiredSkills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, company, description, required_skills, location, job_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, company=excluded.company, description=excluded.description,
		   required_skills=excluded.required_skills, location=excluded.location, job_type=excluded.job_type`,
		job.ID, job.Title, job.Company, job.Description, string(skillsJSON), job.Location, job.JobType, job.CreatedAt,
	)
	return err
}

// GetJob returns a job by ID.
func (s *SQLiteStorage) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, company, description, required_skills, location, job_type, created_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// ListJobs returns all jobs ordered by creation time.
func (s *SQLiteStorage) ListJobs(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, company, description, required_skills, location, job_type, created_at
		 FROM jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CountJobs returns the number of jobs in the catalog.
func (s *SQLiteStorage) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var skillsJSON string
	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Description,
		&skillsJSON, &job.Location, &job.JobType, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if skillsJSON != "" {
		if err := json.Unmarshal([]byte(skillsJSON), &job.RequiredSkills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
	}
	return &job, nil
}

// UpsertKnowledge inserts or replaces a knowledge entry.
func (s *SQLiteStorage) UpsertKnowledge(ctx context.Context, entry *models.KnowledgeEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (id, title, content, type) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, content=excluded.content, type=excluded.type`,
		entry.ID, entry.Title, entry.Content, entry.Type,
	)
	return err
}

// GetKnowledge returns a knowledge entry by ID.
func (s *SQLiteStorage) GetKnowledge(ctx context.Context, id string) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, type FROM knowledge_entries WHERE id = ?`, id,
	).Scan(&entry.ID, &entry.Title, &entry.Content, &entry.Type)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListKnowledge returns all knowledge entries.
func (s *SQLiteStorage) ListKnowledge(ctx context.Context) ([]*models.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, type FROM knowledge_entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.KnowledgeEntry
	for rows.Next() {
		var entry models.KnowledgeEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Content, &entry.Type); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// AppendChatMessage stores one chat exchange.
func (s *SQLiteStorage) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, message, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Message, msg.Response, msg.CreatedAt,
	)
	return err
}

// ListChatHistory returns up to limit most recent messages for a user, newest
// first.
func (s *SQLiteStorage) ListChatHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, response, created_at FROM chat_messages
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Message, &msg.Response, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// CreateCertificate stores a certificate record.
func (s *SQLiteStorage) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	feedbackJSON, err := json.Marshal(cert.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	cert.CreatedAt = time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO certificates (id, student_name, job_title, company, feedback, issued_at, valid_until, verification_code, pdf_path, qr_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cert.ID, cert.StudentName, cert.JobTitle, cert.Company, string(feedbackJSON),
		cert.IssuedAt, cert.ValidUntil, cert.VerificationCode, cert.PDFPath, cert.QRPath, cert.CreatedAt,
	)
	return err
}

// GetCertificate returns a certificate record by ID.
func (s *SQLiteStorage) GetCertificate(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	var feedbackJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_name, job_title, company, feedback, issued_at, valid_until, verification_code, pdf_path, qr_path, created_at
		 FROM certificates WHERE id = ?`, id,
	).Scan(&cert.ID, &cert.StudentName, &cert.JobTitle, &cert.Company, &feedbackJSON,
		&cert.IssuedAt, &cert.ValidUntil, &cert.VerificationCode, &cert.PDFPath, &cert.QRPath, &cert.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if feedbackJSON != "" {
		if err := json.Unmarshal([]byte(feedbackJSON), &cert.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
	}
	return &cert, nil
}

// ReplaceSlots removes all slot mappings of kind and records refs in one
// transaction, so a re-seed never leaves a mix of old and new mappings.
func (s *SQLiteStorage) ReplaceSlots(ctx context.Context, kind string, refs []SlotRef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vector_slots WHERE kind = ?`, kind); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vector_slots (slot, kind, ref_id) VALUES (?, ?, ?)`,
			ref.Slot, ref.Kind, ref.RefID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// RecordSlots adds slot mappings without touching existing ones.
func (s *SQLiteStorage) RecordSlots(ctx context.Context, refs []SlotRef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vector_slots (slot, kind, ref_id) VALUES (?, ?, ?)`,
			ref.Slot, ref.Kind, ref.RefID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ResolveSlot returns the record reference registered at slot.
func (s *SQLiteStorage) ResolveSlot(ctx context.Context, slot int) (*SlotRef, error) {
	var ref SlotRef
	err := s.db.QueryRowContext(ctx,
		`SELECT slot, kind, ref_id FROM vector_slots WHERE slot = ?`, slot,
	).Scan(&ref.Slot, &ref.Kind, &ref.RefID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
