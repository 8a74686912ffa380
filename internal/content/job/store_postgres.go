package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// PostgresStore persists jobs in PostgreSQL. Requirements are stored as a
// JSONB array so the list round-trips without driver-specific array types.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed job store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const jobColumns = `id, title, department, location, type, experience, description, requirements, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, j *Job) error {
	reqs, err := json.Marshal(j.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(j.ID), j.Title, j.Department, j.Location, j.Type,
		j.Experience, j.Description, reqs, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, j *Job) error {
	reqs, err := json.Marshal(j.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}
	query := `
		UPDATE jobs
		SET title = $2, department = $3, location = $4, type = $5,
			experience = $6, description = $7, requirements = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(j.ID), j.Title, j.Department, j.Location, j.Type,
		j.Experience, j.Description, reqs, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, jobID id.JobID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, uuid.UUID(jobID))
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, jobID id.JobID) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	j, err := scanJob(s.db.QueryRowContext(ctx, query, uuid.UUID(jobID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		j     Job
		jobID uuid.UUID
		reqs  []byte
	)
	err := row.Scan(&jobID, &j.Title, &j.Department, &j.Location, &j.Type,
		&j.Experience, &j.Description, &reqs, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.ID = id.JobID(jobID)
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &j.Requirements); err != nil {
			return nil, fmt.Errorf("decode requirements: %w", err)
		}
	}
	return &j, nil
}

// Verify interface satisfaction.
var _ Store = (*PostgresStore)(nil)
