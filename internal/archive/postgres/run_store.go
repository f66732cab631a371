package postgres

import (
	"context"
	"fmt"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
)

// RunStore implements archive.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ archive.RunStore = (*RunStore)(nil)

// Insert adds a finished run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.CompileRun) error {
	if r == nil || r.RunID == "" {
		return archive.ErrInvalidInput
	}

	query := `
		INSERT INTO compile_runs (
			run_id, started_at, finished_at, hero_rows, portfolio_rows,
			tournament_cols, warnings, hero_written, portfolio_written
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID,
		r.StartedAt,
		r.FinishedAt,
		r.HeroRows,
		r.PortfolioRows,
		r.TournamentCols,
		r.Warnings,
		r.HeroWritten,
		r.PortfolioWritten,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return archive.ErrDuplicateKey
		}
		return fmt.Errorf("insert compile run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.CompileRun, error) {
	query := `
		SELECT run_id, started_at, finished_at, hero_rows, portfolio_rows,
		       tournament_cols, warnings, hero_written, portfolio_written
		FROM compile_runs
		WHERE run_id = $1
	`

	var r domain.CompileRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&r.RunID,
		&r.StartedAt,
		&r.FinishedAt,
		&r.HeroRows,
		&r.PortfolioRows,
		&r.TournamentCols,
		&r.Warnings,
		&r.HeroWritten,
		&r.PortfolioWritten,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, archive.ErrNotFound
		}
		return nil, fmt.Errorf("get compile run by id: %w", err)
	}
	return &r, nil
}

// GetRecent retrieves the most recent runs, newest first, at most limit.
func (s *RunStore) GetRecent(ctx context.Context, limit int) ([]*domain.CompileRun, error) {
	if limit <= 0 {
		return nil, archive.ErrInvalidInput
	}

	query := `
		SELECT run_id, started_at, finished_at, hero_rows, portfolio_rows,
		       tournament_cols, warnings, hero_written, portfolio_written
		FROM compile_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent compile runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.CompileRun
	for rows.Next() {
		var r domain.CompileRun
		err := rows.Scan(
			&r.RunID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.HeroRows,
			&r.PortfolioRows,
			&r.TournamentCols,
			&r.Warnings,
			&r.HeroWritten,
			&r.PortfolioWritten,
		)
		if err != nil {
			return nil, fmt.Errorf("scan compile run row: %w", err)
		}
		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compile run rows: %w", err)
	}

	return runs, nil
}
