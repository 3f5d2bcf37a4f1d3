package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/internal/application"
	"github.com/oksasatya/jobify/internal/interface/middleware"
	"github.com/oksasatya/jobify/pkg/apperror"
	"github.com/oksasatya/jobify/pkg/response"
)

// AvatarField is the multipart field carrying the profile image.
const AvatarField = "avatar"

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateUserRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	LastName string `form:"lastName" json:"lastName" binding:"required"`
	Location string `form:"location" json:"location" binding:"required"`
}

type searchUsersQuery struct {
	Q    string `form:"q" json:"q"`
	Size int    `form:"size" json:"size" binding:"omitempty,gte=1,lte=50"`
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, err := h.Svc.CurrentUser(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user}, "current user", nil)
}

// UpdateUser accepts multipart/form-data with an optional avatar file.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		invalid(c, err)
		return
	}
	in := application.UpdateProfileInput{
		UserID:   middleware.UserIDFrom(c),
		Name:     req.Name,
		LastName: req.LastName,
		Location: req.Location,
	}

	fh, err := c.FormFile(AvatarField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			_ = c.Error(apperror.BadRequest("invalid avatar upload"))
			return
		}
		defer func() { _ = f.Close() }()
		// one byte past the limit is enough for the service to reject it
		data, err := io.ReadAll(io.LimitReader(f, h.Svc.ImageMaxBytes+1))
		if err != nil {
			_ = c.Error(apperror.BadRequest("invalid avatar upload"))
			return
		}
		in.Image = data
		in.ImageContentType = fh.Header.Get("Content-Type")
		if in.ImageContentType == "" {
			in.ImageContentType = http.DetectContentType(data)
		}
	case err != http.ErrMissingFile:
		_ = c.Error(apperror.BadRequest("invalid avatar upload"))
		return
	}

	if _, err := h.Svc.UpdateProfile(c.Request.Context(), in); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Image(c *gin.Context) {
	var uri idURI
	if !bindURI(c, &uri) {
		return
	}
	rc, contentType, err := h.Svc.ProfileImage(c.Request.Context(), middleware.UserIDFrom(c), uri.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer func() { _ = rc.Close() }()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *UserHandler) AppStats(c *gin.Context) {
	stats, err := h.Svc.AppStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, stats, "application stats", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	var q searchUsersQuery
	if !bindQuery(c, &q) {
		return
	}
	docs, err := h.Svc.SearchUsers(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": docs}, "users", gin.H{"count": len(docs), "q": q.Q})
}
