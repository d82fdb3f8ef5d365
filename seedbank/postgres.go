package seedbank

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/novexa-ai/interviewd/config"
	apperrors "github.com/novexa-ai/interviewd/errors"
)

// PostgresBank loads role profiles from a PostgreSQL question bank.
type PostgresBank struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "interviewd",
		SSLMode:  "disable",
	}
}

// NewPostgresBank creates a PostgreSQL-backed question bank.
func NewPostgresBank(cfg *PostgresConfig) (*PostgresBank, error) {
	if cfg == nil {
		cfg = DefaultPostgresConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	bank := &PostgresBank{db: db}
	if err := bank.createTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return bank, nil
}

func (b *PostgresBank) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS roles (
		name VARCHAR(128) PRIMARY KEY,
		weak_answer_threshold_words INT NOT NULL DEFAULT 0,
		max_followups INT NOT NULL DEFAULT 0,
		hedge_words TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS questions (
		id SERIAL PRIMARY KEY,
		role VARCHAR(128) NOT NULL REFERENCES roles(name),
		branch VARCHAR(128) NOT NULL DEFAULT '',
		category VARCHAR(32) NOT NULL,
		difficulty VARCHAR(32) NOT NULL DEFAULT '',
		text TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_questions_role ON questions(role);
	`
	_, err := b.db.ExecContext(ctx, query)
	return err
}

// LoadRole implements Bank. It assembles a RoleProfile from the roles and
// questions tables.
func (b *PostgresBank) LoadRole(ctx context.Context, role string) (*RoleProfile, error) {
	if role == "" {
		return nil, fmt.Errorf("%w: role cannot be empty", apperrors.ErrInvalidInput)
	}
	role = strings.ToLower(role)

	var (
		threshold    int
		maxFollowups int
		hedgeCSV     string
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT weak_answer_threshold_words, max_followups, hedge_words FROM roles WHERE name = $1`,
		role,
	).Scan(&threshold, &maxFollowups, &hedgeCSV)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRoleNotFound, role)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load role %s: %w", role, err)
	}

	rules := config.FollowUpRules{
		WeakAnswerThresholdWords: threshold,
		MaxFollowups:             maxFollowups,
	}
	if hedgeCSV != "" {
		for _, h := range strings.Split(hedgeCSV, ",") {
			if h = strings.TrimSpace(h); h != "" {
				rules.HedgeWords = append(rules.HedgeWords, h)
			}
		}
	}

	profile := &RoleProfile{
		Name:          role,
		Branches:      make(map[string]Branch),
		Technical:     make(map[string][]string),
		FollowUpRules: rules.Normalize(),
	}

	rows, err := b.db.QueryContext(ctx,
		`SELECT branch, category, difficulty, text FROM questions WHERE role = $1`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for role %s: %w", role, err)
	}
	defer rows.Close()

	for rows.Next() {
		var branch, category, difficulty, text string
		if err := rows.Scan(&branch, &category, &difficulty, &text); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		branch = strings.ToLower(branch)
		difficulty = strings.ToLower(difficulty)

		if branch == "" {
			if category == "technical" {
				profile.Technical[difficulty] = append(profile.Technical[difficulty], text)
			} else {
				profile.Behavioral = append(profile.Behavioral, text)
			}
			continue
		}

		bp := profile.Branches[branch]
		if category == "technical" {
			if bp.Technical == nil {
				bp.Technical = make(map[string][]string)
			}
			bp.Technical[difficulty] = append(bp.Technical[difficulty], text)
		} else {
			bp.Behavioral = append(bp.Behavioral, text)
		}
		profile.Branches[branch] = bp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question rows: %w", err)
	}

	return profile, nil
}

// Close releases the database handle.
func (b *PostgresBank) Close() error {
	return b.db.Close()
}
