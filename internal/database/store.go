package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/churnikov/otvetgrab/internal/model"
)

// Store provides SQLite-based storage for the harvested taxonomy and
// questions. It manages the connection and exposes transactional write
// operations; every component that needs persistence receives an explicitly
// constructed *Store rather than reaching for shared global state.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned instead of silently creating an empty store (which would reset
// the crawl watermark to zero).
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "otvetgrab.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; the per-id transactions of the
	// crawl controller serialize on this single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// SQLite leaves REFERENCES clauses unenforced unless the pragma is set
	// on the connection; the single-connection pool makes one exec enough.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign key enforcement: %w", err)
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path of the underlying database file.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Top-level taxonomy nodes; ids are ordinals assigned in discovery order.
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		link TEXT NOT NULL
	);

	-- Second-level nodes; ids are globally unique across all parents.
	CREATE TABLE IF NOT EXISTS sub_categories (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL REFERENCES categories(id),
		name TEXT NOT NULL,
		link TEXT NOT NULL,
		UNIQUE(parent_id, name)
	);

	-- Harvested questions; id is the source-assigned page identifier.
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		sub_category_id INTEGER REFERENCES sub_categories(id),
		title TEXT NOT NULL,
		comment TEXT,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category_id);

	-- Answer rows; text NULL marks the "no answers observed" sentinel.
	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL REFERENCES questions(id),
		text TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveTaxonomy persists categories and their subcategories in a single
// transaction, parents before children. Re-running against an already
// populated store upserts by name, so a taxonomy refresh never duplicates
// rows with identical names.
func (s *Store) SaveTaxonomy(ctx context.Context, categories []model.Category, subs []model.SubCategory) error {
	if len(categories) == 0 {
		return ErrEmptyTaxonomy
	}

	parents := make(map[int64]bool, len(categories))
	for _, c := range categories {
		parents[c.ID] = true
	}
	for _, sc := range subs {
		if !parents[sc.ParentID] {
			return fmt.Errorf("%w: subcategory %q parent %d", ErrOrphanSubCategory, sc.Name, sc.ParentID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin taxonomy transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	const catQuery = `
	INSERT INTO categories (id, name, link) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET link = excluded.link
	`
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, catQuery, c.ID, c.Name, c.Link); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
		}
	}

	const subQuery = `
	INSERT INTO sub_categories (id, parent_id, name, link) VALUES (?, ?, ?, ?)
	ON CONFLICT(parent_id, name) DO UPDATE SET link = excluded.link
	`
	for _, sc := range subs {
		if _, err := tx.ExecContext(ctx, subQuery, sc.ID, sc.ParentID, sc.Name, sc.Link); err != nil {
			return fmt.Errorf("failed to insert subcategory %q: %w", sc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit taxonomy: %w", err)
	}
	return nil
}

// LoadTaxonomy returns all persisted categories and subcategories.
func (s *Store) LoadTaxonomy(ctx context.Context) ([]model.Category, []model.SubCategory, error) {
	catRows, err := s.db.QueryContext(ctx, `SELECT id, name, link FROM categories ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer catRows.Close()

	var categories []model.Category
	for catRows.Next() {
		var c model.Category
		if err := catRows.Scan(&c.ID, &c.Name, &c.Link); err != nil {
			return nil, nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, nil, err
	}

	subRows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, name, link FROM sub_categories ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer subRows.Close()

	var subs []model.SubCategory
	for subRows.Next() {
		var sc model.SubCategory
		if err := subRows.Scan(&sc.ID, &sc.ParentID, &sc.Name, &sc.Link); err != nil {
			return nil, nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, sc)
	}
	return categories, subs, subRows.Err()
}

// HasTaxonomy reports whether any categories are persisted.
func (s *Store) HasTaxonomy(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count categories: %w", err)
	}
	return count > 0, nil
}

// MaxQuestionID returns the highest persisted question id. The second return
// value is false when the store holds no questions at all, which the frontier
// maps to a starting id of zero.
func (s *Store) MaxQuestionID(ctx context.Context) (int64, bool, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM questions`).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to query max question id: %w", err)
	}
	return id.Int64, id.Valid, nil
}

// HasQuestion reports whether a question with the given id is persisted.
func (s *Store) HasQuestion(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check question %d: %w", id, err)
	}
	return count > 0, nil
}

// SaveQuestion persists a question together with all its answer rows in one
// transaction. A crash between fetch and commit leaves no partial row for
// the id, so the frontier recomputes correctly on restart.
//
// Every persisted question gets at least one answer row: when the caller
// passes none, the nil-text sentinel row is written to record "no answers
// observed" distinctly from "not yet crawled".
func (s *Store) SaveQuestion(ctx context.Context, q *model.Question, answers []model.Answer) error {
	if len(answers) == 0 {
		answers = []model.Answer{model.SentinelAnswer(q.ID)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin question transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	const qQuery = `
	INSERT INTO questions (id, category_id, sub_category_id, title, comment)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, qQuery, q.ID, q.CategoryID, q.SubCategoryID, q.Title, q.Comment); err != nil {
		return fmt.Errorf("failed to insert question %d: %w", q.ID, err)
	}

	const aQuery = `INSERT INTO answers (question_id, text) VALUES (?, ?)`
	for _, a := range answers {
		if _, err := tx.ExecContext(ctx, aQuery, q.ID, a.Text); err != nil {
			return fmt.Errorf("failed to insert answer for question %d: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question %d: %w", q.ID, err)
	}
	return nil
}

// Answers returns the answer rows for a question in insertion order.
func (s *Store) Answers(ctx context.Context, questionID int64) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question_id, text FROM answers WHERE question_id = ? ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers for question %d: %w", questionID, err)
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.QuestionID, &a.Text); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// CategoryCount pairs a category name with its persisted question count.
type CategoryCount struct {
	// Name is the category name.
	Name string `json:"name"`

	// Questions is the number of questions persisted under the category.
	Questions int `json:"questions"`
}

// Stats summarizes the store contents for the status command.
type Stats struct {
	// Categories is the number of persisted categories.
	Categories int `json:"categories"`

	// SubCategories is the number of persisted subcategories.
	SubCategories int `json:"sub_categories"`

	// Questions is the number of persisted questions.
	Questions int `json:"questions"`

	// Answers is the number of persisted answer rows.
	Answers int `json:"answers"`

	// MaxQuestionID is the crawl watermark; zero when HasQuestions is false.
	MaxQuestionID int64 `json:"max_question_id"`

	// HasQuestions reports whether any question has been persisted yet.
	HasQuestions bool `json:"has_questions"`

	// PerCategory lists question counts per category, ordered by category id.
	PerCategory []CategoryCount `json:"per_category,omitempty"`
}

// Stats collects row counts and the watermark in one call.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM categories`, &st.Categories},
		{`SELECT COUNT(*) FROM sub_categories`, &st.SubCategories},
		{`SELECT COUNT(*) FROM questions`, &st.Questions},
		{`SELECT COUNT(*) FROM answers`, &st.Answers},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
	}

	maxID, ok, err := s.MaxQuestionID(ctx)
	if err != nil {
		return nil, err
	}
	st.MaxQuestionID = maxID
	st.HasQuestions = ok

	rows, err := s.db.QueryContext(ctx, `
	SELECT c.name, COUNT(q.id)
	FROM categories c LEFT JOIN questions q ON q.category_id = c.id
	GROUP BY c.id ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Questions); err != nil {
			return nil, fmt.Errorf("failed to scan per-category count: %w", err)
		}
		st.PerCategory = append(st.PerCategory, cc)
	}
	return st, rows.Err()
}
