package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/internal/application"
	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/interface/middleware"
	"github.com/oksasatya/jobify/pkg/response"
)

type JobHandler struct {
	Svc    *application.JobService
	Logger *logrus.Logger
}

func NewJobHandler(svc *application.JobService, logger *logrus.Logger) *JobHandler {
	return &JobHandler{Svc: svc, Logger: logger}
}

type createJobRequest struct {
	Company     string `json:"company" binding:"required"`
	Position    string `json:"position" binding:"required"`
	JobStatus   string `json:"jobStatus" binding:"omitempty,jobstatus"`
	JobType     string `json:"jobType" binding:"omitempty,jobtype"`
	JobLocation string `json:"jobLocation"`
}

type updateJobRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	JobStatus   string `json:"jobStatus" binding:"omitempty,jobstatus"`
	JobType     string `json:"jobType" binding:"omitempty,jobtype"`
	JobLocation string `json:"jobLocation"`
}

type listJobsQuery struct {
	Search    string `form:"search" json:"search"`
	JobStatus string `form:"jobStatus" json:"jobStatus" binding:"omitempty,jobstatusfilter"`
	JobType   string `form:"jobType" json:"jobType" binding:"omitempty,jobtypefilter"`
	Sort      string `form:"sort" json:"sort"`
}

type jobPageResponse struct {
	Jobs       []entity.JobView `json:"jobs"`
	TotalJobs  int64            `json:"totalJobs"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

func toJobPage(p *application.JobPage) jobPageResponse {
	views := make([]entity.JobView, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		views = append(views, j.View())
	}
	return jobPageResponse{Jobs: views, TotalJobs: p.TotalJobs, Page: p.Page, TotalPages: p.TotalPages}
}

func (h *JobHandler) List(c *gin.Context) {
	var q listJobsQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.Svc.RetrieveJobs(c.Request.Context(), application.RetrieveJobsInput{
		UserID:    middleware.UserIDFrom(c),
		Search:    q.Search,
		JobStatus: q.JobStatus,
		JobType:   q.JobType,
		Sort:      q.Sort,
		Page:      pageParam(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toJobPage(res.Page), "jobs", nil)
}

func (h *JobHandler) Get(c *gin.Context) {
	var uri idURI
	if !bindURI(c, &uri) {
		return
	}
	res, err := h.Svc.RetrieveJobs(c.Request.Context(), application.RetrieveJobsInput{
		UserID: middleware.UserIDFrom(c),
		JobID:  uri.ID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": res.Job.View()}, "job", nil)
}

func (h *JobHandler) Create(c *gin.Context) {
	var req createJobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.Svc.ChangeJob(c.Request.Context(), application.ChangeJobInput{
		UserID:   middleware.UserIDFrom(c),
		Company:  req.Company,
		Position: req.Position,
		Status:   req.JobStatus,
		JobType:  req.JobType,
		Location: req.JobLocation,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"job": job.View()}, "job created", nil)
}

func (h *JobHandler) Update(c *gin.Context) {
	var uri idURI
	if !bindURI(c, &uri) {
		return
	}
	var req updateJobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.Svc.ChangeJob(c.Request.Context(), application.ChangeJobInput{
		UserID:   middleware.UserIDFrom(c),
		JobID:    uri.ID,
		Company:  req.Company,
		Position: req.Position,
		Status:   req.JobStatus,
		JobType:  req.JobType,
		Location: req.JobLocation,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": job.View()}, "job modified", nil)
}

func (h *JobHandler) Delete(c *gin.Context) {
	var uri idURI
	if !bindURI(c, &uri) {
		return
	}
	if err := h.Svc.DeleteJob(c.Request.Context(), application.DeleteJobInput{
		UserID: middleware.UserIDFrom(c),
		JobID:  uri.ID,
	}); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "job deleted", nil)
}

func (h *JobHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, stats, "job stats", nil)
}
