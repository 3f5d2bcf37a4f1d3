package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
)

func newOwner(t *testing.T, users *UserRepository, email string) *entity.User {
	t.Helper()
	e, err := entity.NewEmail(email)
	require.NoError(t, err)
	pwd, err := entity.NewHashedPassword("hash")
	require.NoError(t, err)
	u, err := entity.NewUser(entity.UserParams{
		Name: "Ann", LastName: "Lee", Email: e, Password: pwd, Location: "Berlin", Role: entity.RoleUser,
	})
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func addJob(t *testing.T, jobs *JobRepository, owner *entity.User, position, company string, status entity.JobStatus, at time.Time) *entity.Job {
	t.Helper()
	j, err := entity.NewJob(entity.JobParams{
		Company: company, Position: position, Status: status, Type: entity.JobTypeFullTime,
		Location: "Remote", CreatedBy: owner, CreatedAt: at, UpdatedAt: at,
	})
	require.NoError(t, err)
	require.NoError(t, jobs.Create(context.Background(), j))
	return j
}

func TestUserRepositoryUpdateKeepsCredentials(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	u := newOwner(t, users, "ann@x.com")
	assert.True(t, u.IsPersisted())

	other, err := entity.NewEmail("other@x.com")
	require.NoError(t, err)
	changed := *u
	changed.Name = "Anna"
	changed.Email = other
	require.NoError(t, users.Update(ctx, &changed))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, u.Email, got.Email)

	_, err = users.GetByID(ctx, entity.GenerateEntityID())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestJobRepositoryListByOwner(t *testing.T) {
	ctx := context.Background()
	users, jobs := NewUserRepository(), NewJobRepository()
	ann := newOwner(t, users, "ann@x.com")
	bob := newOwner(t, users, "bob@x.com")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	addJob(t, jobs, ann, "Backend Engineer", "Acme", entity.JobStatusPending, base)
	addJob(t, jobs, ann, "Analyst", "Engineering Co", entity.JobStatusInterview, base.Add(time.Hour))
	addJob(t, jobs, ann, "Designer", "Studio", entity.JobStatusDeclined, base.Add(2*time.Hour))
	addJob(t, jobs, bob, "Engineer", "Other", entity.JobStatusPending, base)

	page, total, err := jobs.ListByOwner(ctx, &ann.ID, repo.JobQuery{Search: "ENGINEER", Sort: repo.SortNewest, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Analyst", page[0].Position)

	status := entity.JobStatusDeclined
	page, total, err = jobs.ListByOwner(ctx, &ann.ID, repo.JobQuery{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Designer", page[0].Position)

	page, total, err = jobs.ListByOwner(ctx, nil, repo.JobQuery{Sort: repo.SortAZ, Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Backend Engineer", page[0].Position)
	assert.Equal(t, "Designer", page[1].Position)

	page, _, err = jobs.ListByOwner(ctx, nil, repo.JobQuery{Skip: 10, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestJobRepositoryListByOwnerOddWindows(t *testing.T) {
	ctx := context.Background()
	users, jobs := NewUserRepository(), NewJobRepository()
	ann := newOwner(t, users, "ann@x.com")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	addJob(t, jobs, ann, "Backend Engineer", "Acme", entity.JobStatusPending, base)
	addJob(t, jobs, ann, "Designer", "Studio", entity.JobStatusPending, base.Add(time.Hour))

	page, total, err := jobs.ListByOwner(ctx, &ann.ID, repo.JobQuery{Search: "   ", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "blank search does not filter")
	assert.Len(t, page, 2)

	page, _, err = jobs.ListByOwner(ctx, &ann.ID, repo.JobQuery{Skip: -5, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Designer", page[0].Position)

	assert.NotPanics(t, func() {
		page, _, err = jobs.ListByOwner(ctx, &ann.ID, repo.JobQuery{Skip: 1, Limit: int(^uint(0) >> 1)})
	})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestJobRepositoryFindByIDAndOwner(t *testing.T) {
	ctx := context.Background()
	users, jobs := NewUserRepository(), NewJobRepository()
	ann := newOwner(t, users, "ann@x.com")
	bob := newOwner(t, users, "bob@x.com")
	j := addJob(t, jobs, ann, "Dev", "Acme", entity.JobStatusPending, time.Now())

	got, err := jobs.FindByIDAndOwner(ctx, j.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)

	_, err = jobs.FindByIDAndOwner(ctx, j.ID, bob.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestJobRepositoryStatsCapsMonths(t *testing.T) {
	users, jobs := NewUserRepository(), NewJobRepository()
	ann := newOwner(t, users, "ann@x.com")
	for m := 1; m <= 8; m++ {
		at := time.Date(2024, time.Month(m), 10, 0, 0, 0, 0, time.UTC)
		addJob(t, jobs, ann, "Dev", "Acme", entity.JobStatusPending, at)
	}
	addJob(t, jobs, ann, "Dev", "Acme", entity.JobStatusInterview, time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC))

	stats, err := jobs.GetStats(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, stats.ByStatus[entity.JobStatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[entity.JobStatusInterview])
	require.Len(t, stats.Monthly, 6)
	assert.Equal(t, repo.MonthlyCount{Year: 2024, Month: time.August, Count: 2}, stats.Monthly[0])
	assert.Equal(t, time.March, stats.Monthly[5].Month)
}
