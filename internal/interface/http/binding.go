package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/pkg/response"
	"github.com/oksasatya/jobify/pkg/validation"
)

// bindJSON writes a 400 with field details and returns false when the body is invalid.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		invalid(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		invalid(c, err)
		return false
	}
	return true
}

func bindURI(c *gin.Context, dst any) bool {
	if err := c.ShouldBindUri(dst); err != nil {
		invalid(c, err)
		return false
	}
	return true
}

func invalid(c *gin.Context, err error) {
	details := validation.ToDetails(err)
	response.Error[any](c, http.StatusBadRequest, validation.Message(details), details)
}

type idURI struct {
	ID string `uri:"id" json:"id" binding:"required,objectid"`
}

// pageParam is lenient: anything that is not a positive integer means page 1.
func pageParam(c *gin.Context) int {
	p, err := strconv.Atoi(c.Query("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}
