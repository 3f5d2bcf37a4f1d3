// Package memory holds map-backed repositories for tests and local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.Mutex
	byID  map[entity.EntityID]*entity.User
	order []entity.EntityID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[entity.EntityID]*entity.User{}}
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id entity.EntityID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = entity.GenerateEntityID()
	}
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cp := *u
	cp.Email = cur.Email
	cp.Password = cur.Password
	r.byID[u.ID] = &cp
	return nil
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id entity.EntityID, imageID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *cur
	cp.ImageID = imageID
	r.byID[id] = &cp
	return &cp, nil
}

func (r *UserRepository) Delete(ctx context.Context, id entity.EntityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *UserRepository) ListImageIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, u := range r.byID {
		if u.ImageID != "" {
			out = append(out, u.ImageID)
		}
	}
	return out, nil
}

const monthlyBuckets = 6

type JobRepository struct {
	mu   sync.Mutex
	byID map[entity.EntityID]*entity.Job
}

func NewJobRepository() *JobRepository {
	return &JobRepository{byID: map[entity.EntityID]*entity.Job{}}
}

func (r *JobRepository) ListAll(ctx context.Context) ([]*entity.Job, error) {
	return r.filter(nil, repo.JobQuery{}), nil
}

func (r *JobRepository) GetByID(ctx context.Context, id entity.EntityID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return j, nil
}

func (r *JobRepository) Create(ctx context.Context, j *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = entity.GenerateEntityID()
	}
	r.byID[j.ID] = j
	return nil
}

func (r *JobRepository) Update(ctx context.Context, j *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[j.ID]; !ok {
		return repo.ErrNotFound
	}
	r.byID[j.ID] = j
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id entity.EntityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *JobRepository) FindByIDAndOwner(ctx context.Context, id, ownerID entity.EntityID) (*entity.Job, error) {
	j, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.OwnerID() != ownerID {
		return nil, repo.ErrNotFound
	}
	return j, nil
}

func (r *JobRepository) ListByOwner(ctx context.Context, ownerID *entity.EntityID, q repo.JobQuery) ([]*entity.Job, int64, error) {
	all := r.filter(ownerID, q)
	total := int64(len(all))
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Skip >= len(all) {
		return []*entity.Job{}, total, nil
	}
	end := len(all)
	if q.Limit > 0 && q.Limit < end-q.Skip {
		end = q.Skip + q.Limit
	}
	return all[q.Skip:end], total, nil
}

func (r *JobRepository) filter(ownerID *entity.EntityID, q repo.JobQuery) []*entity.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	var out []*entity.Job
	for _, j := range r.byID {
		if ownerID != nil && j.OwnerID() != *ownerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(j.Position), needle) && !strings.Contains(strings.ToLower(j.Company), needle) {
			continue
		}
		if q.Status != nil && j.Status != *q.Status {
			continue
		}
		if q.Type != nil && j.Type != *q.Type {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool {
		switch q.Sort {
		case repo.SortOldest:
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		case repo.SortAZ:
			return out[a].Position < out[b].Position
		case repo.SortZA:
			return out[a].Position > out[b].Position
		default:
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
	})
	return out
}

func (r *JobRepository) GetStats(ctx context.Context, ownerID entity.EntityID) (*repo.JobStats, error) {
	jobs := r.filter(&ownerID, repo.JobQuery{Sort: repo.SortNewest})
	stats := &repo.JobStats{ByStatus: map[entity.JobStatus]int64{}}
	for _, j := range jobs {
		stats.ByStatus[j.Status]++
		y, m, _ := j.CreatedAt.Date()
		n := len(stats.Monthly)
		if n > 0 && stats.Monthly[n-1].Year == y && stats.Monthly[n-1].Month == m {
			stats.Monthly[n-1].Count++
			continue
		}
		if n == monthlyBuckets {
			continue
		}
		stats.Monthly = append(stats.Monthly, repo.MonthlyCount{Year: y, Month: m, Count: 1})
	}
	return stats, nil
}

func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

var (
	_ repo.UserRepository = (*UserRepository)(nil)
	_ repo.JobRepository  = (*JobRepository)(nil)
)
