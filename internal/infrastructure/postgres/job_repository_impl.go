package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/repository"
)

// Jobs are always loaded with their owner.
const jobSelect = `
	SELECT j.id, j.company, j.position, j.status, j.job_type, j.location, j.created_at, j.updated_at,
	       u.id, u.name, u.last_name, u.email, u.password_hash, u.location, u.role, COALESCE(u.image_id, ''), u.created_at, u.updated_at
	FROM jobs j
	JOIN users u ON u.id = j.created_by`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

type jobRow struct {
	ID        string
	Company   string
	Position  string
	Status    string
	Type      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Owner     userRow
}

func (r *jobRow) dest() []any {
	return append([]any{&r.ID, &r.Company, &r.Position, &r.Status, &r.Type, &r.Location, &r.CreatedAt, &r.UpdatedAt}, r.Owner.dest()...)
}

func (r *jobRow) toEntity() (*entity.Job, error) {
	id, err := entity.NewEntityID(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := r.Owner.toEntity()
	if err != nil {
		return nil, err
	}
	return entity.NewJob(entity.JobParams{
		ID:        id,
		Company:   r.Company,
		Position:  r.Position,
		Status:    entity.JobStatus(r.Status),
		Type:      entity.JobType(r.Type),
		Location:  r.Location,
		CreatedBy: owner,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

func (r *JobRepository) scanOne(row pgx.Row) (*entity.Job, error) {
	var jr jobRow
	if err := row.Scan(jr.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return jr.toEntity()
}

func (r *JobRepository) scanMany(rows pgx.Rows) ([]*entity.Job, error) {
	defer rows.Close()
	out := []*entity.Job{}
	for rows.Next() {
		var jr jobRow
		if err := rows.Scan(jr.dest()...); err != nil {
			return nil, err
		}
		j, err := jr.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JobRepository) ListAll(ctx context.Context) ([]*entity.Job, error) {
	rows, err := r.pool.Query(ctx, jobSelect+` ORDER BY j.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

func (r *JobRepository) GetByID(ctx context.Context, id entity.EntityID) (*entity.Job, error) {
	return r.scanOne(r.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id.String()))
}

func (r *JobRepository) FindByIDAndOwner(ctx context.Context, id, ownerID entity.EntityID) (*entity.Job, error) {
	return r.scanOne(r.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1 AND j.created_by = $2`, id.String(), ownerID.String()))
}

func (r *JobRepository) Create(ctx context.Context, j *entity.Job) error {
	if j.ID.IsZero() {
		j.ID = entity.GenerateEntityID()
	}
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = now
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jobs (id, company, position, status, job_type, location, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, j.ID.String(), j.Company, j.Position, string(j.Status), string(j.Type), j.Location, j.OwnerID().String(), j.CreatedAt, j.UpdatedAt)
	return mapConstraintError(err)
}

// Update never changes created_by or created_at.
func (r *JobRepository) Update(ctx context.Context, j *entity.Job) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET company = $1, position = $2, status = $3, job_type = $4, location = $5, updated_at = $6
		WHERE id = $7
	`, j.Company, j.Position, string(j.Status), string(j.Type), j.Location, j.UpdatedAt, j.ID.String())
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id entity.EntityID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *JobRepository) ListByOwner(ctx context.Context, ownerID *entity.EntityID, q repository.JobQuery) ([]*entity.Job, int64, error) {
	where, args := buildJobFilter(ownerID, q)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := jobSelect + where + ` ORDER BY ` + jobOrderBy(q.Sort)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	jobs, err := r.scanMany(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// buildJobFilter returns a WHERE clause (or "") over alias j and its arguments.
func buildJobFilter(ownerID *entity.EntityID, q repository.JobQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if ownerID != nil {
		args = append(args, ownerID.String())
		conds = append(conds, fmt.Sprintf("j.created_by = $%d", len(args)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(j.position ILIKE $%d OR j.company ILIKE $%d)", n, n))
	}
	if q.Status != nil {
		args = append(args, string(*q.Status))
		conds = append(conds, fmt.Sprintf("j.status = $%d", len(args)))
	}
	if q.Type != nil {
		args = append(args, string(*q.Type))
		conds = append(conds, fmt.Sprintf("j.job_type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// jobOrderBy uses id as a tie breaker so pages stay stable.
func jobOrderBy(s repository.JobSort) string {
	switch s {
	case repository.SortOldest:
		return "j.created_at ASC, j.id ASC"
	case repository.SortAZ:
		return "j.position ASC, j.id ASC"
	case repository.SortZA:
		return "j.position DESC, j.id DESC"
	default:
		return "j.created_at DESC, j.id DESC"
	}
}

func (r *JobRepository) GetStats(ctx context.Context, ownerID entity.EntityID) (*repository.JobStats, error) {
	stats := &repository.JobStats{ByStatus: map[entity.JobStatus]int64{}}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs WHERE created_by = $1 GROUP BY status`, ownerID.String())
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[entity.JobStatus(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM created_at)::int AS y, EXTRACT(MONTH FROM created_at)::int AS m, COUNT(*)
		FROM jobs
		WHERE created_by = $1
		GROUP BY y, m
		ORDER BY y DESC, m DESC
		LIMIT 6
	`, ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			y, m int
			n    int64
		)
		if err := rows.Scan(&y, &m, &n); err != nil {
			return nil, err
		}
		stats.Monthly = append(stats.Monthly, repository.MonthlyCount{Year: y, Month: time.Month(m), Count: n})
	}
	return stats, rows.Err()
}

func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

var _ repository.JobRepository = (*JobRepository)(nil)
