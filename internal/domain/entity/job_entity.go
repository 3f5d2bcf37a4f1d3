package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/jobify/pkg/apperror"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusInterview JobStatus = "interview"
	JobStatusDeclined  JobStatus = "declined"
)

// JobStatuses lists every status in display order.
var JobStatuses = []JobStatus{JobStatusPending, JobStatusInterview, JobStatusDeclined}

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	}
	return false
}

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

func (t JobType) IsValid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

const DefaultJobLocation = "Remote"

// Job is a tracked application. CreatedBy holds the full owner entity.
type Job struct {
	ID        EntityID
	Company   string
	Position  string
	Status    JobStatus
	Type      JobType
	Location  string
	CreatedBy *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobParams struct {
	ID        EntityID
	Company   string
	Position  string
	Status    JobStatus
	Type      JobType
	Location  string
	CreatedBy *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewJob(p JobParams) (*Job, error) {
	company := strings.TrimSpace(p.Company)
	position := strings.TrimSpace(p.Position)
	location := strings.TrimSpace(p.Location)
	switch {
	case company == "":
		return nil, apperror.BadRequest("company is required")
	case position == "":
		return nil, apperror.BadRequest("position is required")
	case location == "":
		return nil, apperror.BadRequest("location is required")
	case p.CreatedBy == nil:
		return nil, apperror.BadRequest("job owner is required")
	case !p.Status.IsValid():
		return nil, apperror.BadRequest("invalid status value")
	case !p.Type.IsValid():
		return nil, apperror.BadRequest("invalid job type")
	}
	return &Job{
		ID:        p.ID,
		Company:   company,
		Position:  position,
		Status:    p.Status,
		Type:      p.Type,
		Location:  location,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (j *Job) IsPersisted() bool { return !j.ID.IsZero() }

// OwnerID is the key used for every authorization decision on the job.
func (j *Job) OwnerID() EntityID {
	if j.CreatedBy == nil {
		return ""
	}
	return j.CreatedBy.ID
}

// JobChanges carries the mutable fields of a job.
type JobChanges struct {
	Company  string
	Position string
	Status   JobStatus
	Type     JobType
	Location string
}

// Merge returns a copy of j with changes applied. Identity, owner and
// creation time always come from j.
func (j *Job) Merge(c JobChanges, now time.Time) (*Job, error) {
	return NewJob(JobParams{
		ID:        j.ID,
		Company:   c.Company,
		Position:  c.Position,
		Status:    c.Status,
		Type:      c.Type,
		Location:  c.Location,
		CreatedBy: j.CreatedBy,
		CreatedAt: j.CreatedAt,
		UpdatedAt: now,
	})
}

// JobView is the JSON shape of a job.
type JobView struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Status    JobStatus `json:"status"`
	JobType   JobType   `json:"jobType"`
	Location  string    `json:"location"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j *Job) View() JobView {
	return JobView{
		ID:        j.ID.String(),
		Company:   j.Company,
		Position:  j.Position,
		Status:    j.Status,
		JobType:   j.Type,
		Location:  j.Location,
		CreatedBy: j.OwnerID().String(),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
