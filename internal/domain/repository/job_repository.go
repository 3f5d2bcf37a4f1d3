package repository

import (
	"context"
	"time"

	"github.com/oksasatya/jobify/internal/domain/entity"
)

type JobSort string

const (
	SortNewest JobSort = "newest"
	SortOldest JobSort = "oldest"
	SortAZ     JobSort = "a-z"
	SortZA     JobSort = "z-a"
)

// ParseJobSort maps a client value to a sort key. Unknown values fall back to newest.
func ParseJobSort(s string) JobSort {
	switch JobSort(s) {
	case SortOldest, SortAZ, SortZA:
		return JobSort(s)
	}
	return SortNewest
}

// JobQuery narrows ListByOwner. Nil Status or Type means no filter.
type JobQuery struct {
	Search string
	Status *entity.JobStatus
	Type   *entity.JobType
	Sort   JobSort
	Skip   int
	Limit  int
}

type MonthlyCount struct {
	Year  int
	Month time.Month
	Count int64
}

// JobStats holds raw aggregates. Monthly is newest first and capped at six buckets.
type JobStats struct {
	ByStatus map[entity.JobStatus]int64
	Monthly  []MonthlyCount
}

type JobRepository interface {
	ListAll(ctx context.Context) ([]*entity.Job, error)
	GetByID(ctx context.Context, id entity.EntityID) (*entity.Job, error)
	Create(ctx context.Context, j *entity.Job) error
	Update(ctx context.Context, j *entity.Job) error
	Delete(ctx context.Context, id entity.EntityID) error
	FindByIDAndOwner(ctx context.Context, id, ownerID entity.EntityID) (*entity.Job, error)
	// ListByOwner returns one page of jobs and the total match count. A nil
	// ownerID lists across all owners.
	ListByOwner(ctx context.Context, ownerID *entity.EntityID, q JobQuery) ([]*entity.Job, int64, error)
	GetStats(ctx context.Context, ownerID entity.EntityID) (*JobStats, error)
	Count(ctx context.Context) (int64, error)
}
