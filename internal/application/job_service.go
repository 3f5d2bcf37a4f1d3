package application

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/pkg/apperror"
)

const (
	JobsPageSize = 10
	// FilterAll disables the status or type filter.
	FilterAll = "all"

	maxMonthlyBuckets = 6

	// maxPage keeps (page-1)*JobsPageSize inside int.
	maxPage = math.MaxInt/JobsPageSize + 1
)

type JobService struct {
	Jobs      repo.JobRepository
	Users     repo.UserRepository
	Ownership *OwnershipValidator
	Logger    *logrus.Logger

	now func() time.Time
}

func NewJobService(jobs repo.JobRepository, users repo.UserRepository, logger *logrus.Logger) *JobService {
	return &JobService{
		Jobs:      jobs,
		Users:     users,
		Ownership: NewOwnershipValidator(users),
		Logger:    logger,
		now:       time.Now,
	}
}

// ChangeJobInput creates a job when JobID is empty and updates it otherwise.
// On update, empty fields keep the stored value.
type ChangeJobInput struct {
	UserID   string
	JobID    string
	Company  string
	Position string
	Status   string
	JobType  string
	Location string
}

func (s *JobService) ChangeJob(ctx context.Context, in ChangeJobInput) (*entity.Job, error) {
	uid, err := actingUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.Users, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated(msgAuthInvalid)
	}

	now := s.now()
	if in.JobID == "" {
		job, err := entity.NewJob(entity.JobParams{
			Company:   in.Company,
			Position:  in.Position,
			Status:    entity.JobStatus(orDefault(in.Status, string(entity.JobStatusPending))),
			Type:      entity.JobType(orDefault(in.JobType, string(entity.JobTypeFullTime))),
			Location:  orDefault(in.Location, entity.DefaultJobLocation),
			CreatedBy: user,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Jobs.Create(ctx, job); err != nil {
			s.Logger.WithError(err).WithField("user_id", user.ID).Error("create job failed")
			return nil, internal(err)
		}
		jobsCreated.Add(1)
		return job, nil
	}

	jobID, err := entity.NewEntityID(in.JobID)
	if err != nil {
		return nil, err
	}
	existing, err := findJob(ctx, s.Jobs, jobID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, jobNotFound(in.JobID)
	}
	if err := s.Ownership.Validate(ctx, user.ID, existing.OwnerID()); err != nil {
		return nil, err
	}

	updated, err := existing.Merge(entity.JobChanges{
		Company:  orDefault(in.Company, existing.Company),
		Position: orDefault(in.Position, existing.Position),
		Status:   entity.JobStatus(orDefault(in.Status, string(existing.Status))),
		Type:     entity.JobType(orDefault(in.JobType, string(existing.Type))),
		Location: orDefault(in.Location, existing.Location),
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.Jobs.Update(ctx, updated); err != nil {
		s.Logger.WithError(err).WithField("job_id", updated.ID).Error("update job failed")
		return nil, internal(err)
	}
	jobsUpdated.Add(1)
	return updated, nil
}

type DeleteJobInput struct {
	UserID string
	JobID  string
}

func (s *JobService) DeleteJob(ctx context.Context, in DeleteJobInput) error {
	uid, err := actingUserID(in.UserID)
	if err != nil {
		return err
	}
	jobID, err := entity.NewEntityID(in.JobID)
	if err != nil {
		return err
	}
	job, err := findJob(ctx, s.Jobs, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return jobNotFound(in.JobID)
	}
	if err := s.Ownership.Validate(ctx, uid, job.OwnerID()); err != nil {
		return err
	}
	if err := s.Jobs.Delete(ctx, job.ID); err != nil {
		s.Logger.WithError(err).WithField("job_id", job.ID).Error("delete job failed")
		return internal(err)
	}
	jobsDeleted.Add(1)
	return nil
}

// RetrieveJobsInput selects the single-job path when JobID is set and the
// list path otherwise.
type RetrieveJobsInput struct {
	UserID    string
	JobID     string
	Search    string
	JobStatus string
	JobType   string
	Sort      string
	Page      int
}

type JobPage struct {
	Jobs       []*entity.Job
	TotalJobs  int64
	Page       int
	TotalPages int
}

// RetrieveJobsResult carries exactly one of Job or Page.
type RetrieveJobsResult struct {
	Job  *entity.Job
	Page *JobPage
}

func (s *JobService) RetrieveJobs(ctx context.Context, in RetrieveJobsInput) (*RetrieveJobsResult, error) {
	if in.JobID != "" {
		job, err := s.GetJob(ctx, in.UserID, in.JobID)
		if err != nil {
			return nil, err
		}
		return &RetrieveJobsResult{Job: job}, nil
	}
	page, err := s.SearchJobs(ctx, in)
	if err != nil {
		return nil, err
	}
	return &RetrieveJobsResult{Page: page}, nil
}

func (s *JobService) GetJob(ctx context.Context, userID, jobID string) (*entity.Job, error) {
	uid, err := actingUserID(userID)
	if err != nil {
		return nil, err
	}
	id, err := entity.NewEntityID(jobID)
	if err != nil {
		return nil, err
	}
	job, err := findJob(ctx, s.Jobs, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, jobNotFound(jobID)
	}
	if err := s.Ownership.Validate(ctx, uid, job.OwnerID()); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) SearchJobs(ctx context.Context, in RetrieveJobsInput) (*JobPage, error) {
	uid, err := actingUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.Users, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound(in.UserID)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	q := repo.JobQuery{
		Search: strings.TrimSpace(in.Search),
		Sort:   repo.ParseJobSort(in.Sort),
		Skip:   (page - 1) * JobsPageSize,
		Limit:  JobsPageSize,
	}
	// A status or type no job can carry matches nothing.
	if in.JobStatus != "" && in.JobStatus != FilterAll {
		st := entity.JobStatus(in.JobStatus)
		if !st.IsValid() {
			return emptyJobPage(page), nil
		}
		q.Status = &st
	}
	if in.JobType != "" && in.JobType != FilterAll {
		jt := entity.JobType(in.JobType)
		if !jt.IsValid() {
			return emptyJobPage(page), nil
		}
		q.Type = &jt
	}

	var scope *entity.EntityID
	if !user.Role.CanBypassOwnership() {
		scope = &user.ID
	}

	jobs, total, err := s.Jobs.ListByOwner(ctx, scope, q)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("list jobs failed")
		return nil, internal(err)
	}
	return &JobPage{
		Jobs:       jobs,
		TotalJobs:  total,
		Page:       page,
		TotalPages: TotalPages(total, JobsPageSize),
	}, nil
}

func emptyJobPage(page int) *JobPage {
	return &JobPage{Jobs: []*entity.Job{}, Page: page}
}

// TotalPages is ceil(total / size).
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

type StatusStats struct {
	Pending   int64 `json:"pending"`
	Interview int64 `json:"interview"`
	Declined  int64 `json:"declined"`
}

type MonthlyApplication struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type JobStatsResult struct {
	Stats               StatusStats          `json:"stats"`
	MonthlyApplications []MonthlyApplication `json:"monthlyApplications"`
}

// Stats aggregates the acting user's own jobs, even for admins.
func (s *JobService) Stats(ctx context.Context, userID string) (*JobStatsResult, error) {
	uid, err := actingUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.Users, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound(userID)
	}

	raw, err := s.Jobs.GetStats(ctx, user.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("job stats failed")
		return nil, internal(err)
	}

	res := &JobStatsResult{MonthlyApplications: []MonthlyApplication{}}
	if raw == nil {
		return res, nil
	}
	res.Stats = StatusStats{
		Pending:   raw.ByStatus[entity.JobStatusPending],
		Interview: raw.ByStatus[entity.JobStatusInterview],
		Declined:  raw.ByStatus[entity.JobStatusDeclined],
	}

	monthly := raw.Monthly
	if len(monthly) > maxMonthlyBuckets {
		monthly = monthly[:maxMonthlyBuckets]
	}
	// newest first from the repository, oldest first for display
	for i := len(monthly) - 1; i >= 0; i-- {
		m := monthly[i]
		res.MonthlyApplications = append(res.MonthlyApplications, MonthlyApplication{
			Date:  time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006"),
			Count: m.Count,
		})
	}
	return res, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
