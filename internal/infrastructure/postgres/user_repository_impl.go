package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/repository"
)

const userColumns = `id, name, last_name, email, password_hash, location, role, COALESCE(image_id, ''), created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// userRow mirrors the users table before domain validation.
type userRow struct {
	ID        string
	Name      string
	LastName  string
	Email     string
	Password  string
	Location  string
	Role      string
	ImageID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *userRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.LastName, &r.Email, &r.Password, &r.Location, &r.Role, &r.ImageID, &r.CreatedAt, &r.UpdatedAt}
}

func (r *userRow) toEntity() (*entity.User, error) {
	id, err := entity.NewEntityID(r.ID)
	if err != nil {
		return nil, err
	}
	email, err := entity.NewEmail(r.Email)
	if err != nil {
		return nil, err
	}
	pwd, err := entity.NewHashedPassword(r.Password)
	if err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	return entity.NewUser(entity.UserParams{
		ID:        id,
		Name:      r.Name,
		LastName:  r.LastName,
		Email:     email,
		Password:  pwd,
		Location:  r.Location,
		Role:      role,
		ImageID:   r.ImageID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

func (r *UserRepository) scanOne(row pgx.Row) (*entity.User, error) {
	var ur userRow
	if err := row.Scan(ur.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ur.toEntity()
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		var ur userRow
		if err := rows.Scan(ur.dest()...); err != nil {
			return nil, err
		}
		u, err := ur.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id entity.EntityID) (*entity.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String()))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.String()))
}

// Create assigns an id when the user has none and fills the timestamps.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID.IsZero() {
		u.ID = entity.GenerateEntityID()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, last_name, email, password_hash, location, role, image_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
	`, u.ID.String(), u.Name, u.LastName, u.Email.String(), u.Password.Hashed(), u.Location, u.Role.String(), u.ImageID, u.CreatedAt, u.UpdatedAt)
	return mapConstraintError(err)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, last_name = $2, location = $3, role = $4, updated_at = $5
		WHERE id = $6
	`, u.Name, u.LastName, u.Location, u.Role.String(), u.UpdatedAt, u.ID.String())
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id entity.EntityID, imageID string) (*entity.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE users
		SET image_id = NULLIF($1, ''), updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns, imageID, id.String()))
}

func (r *UserRepository) Delete(ctx context.Context, id entity.EntityID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) ListImageIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT image_id FROM users WHERE image_id IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Upsert creates the user or refreshes its profile, password and role when
// the email already exists. Used by the seeder.
func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	if u.ID.IsZero() {
		u.ID = entity.GenerateEntityID()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, last_name, email, password_hash, location, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, last_name = EXCLUDED.last_name, password_hash = EXCLUDED.password_hash,
		    location = EXCLUDED.location, role = EXCLUDED.role, updated_at = now()
		RETURNING id, created_at, updated_at
	`, u.ID.String(), u.Name, u.LastName, u.Email.String(), u.Password.Hashed(), u.Location, u.Role.String())
	var id string
	if err := row.Scan(&id, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.ID = entity.EntityID(id)
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
