package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	propseekerrors "github.com/propseek/propseek/internal/errors"
	"github.com/propseek/propseek/internal/service"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError translates service error codes to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case propseekerrors.HasCode(err, propseekerrors.ErrCodeQueryTooShort),
		propseekerrors.HasCode(err, propseekerrors.ErrCodeInvalidInput):
		status = http.StatusBadRequest
	case propseekerrors.HasCode(err, propseekerrors.ErrCodeNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, errorResponse{
		Code:  propseekerrors.GetCode(err),
		Error: err.Error(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": stats})
}

// handleSearch serves GET /search?q=<query>&limit=<n>.
func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, propseekerrors.Newf(propseekerrors.ErrCodeInvalidInput,
				"limit must be an integer"))
			return
		}
		limit = n
	}

	results, err := s.svc.Search(c.Request.Context(), query, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// handleGetProperty serves GET /property/:id.
func (s *Server) handleGetProperty(c *gin.Context) {
	p, err := s.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleClaim serves POST /claim.
func (s *Server) handleClaim(c *gin.Context) {
	var req service.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, propseekerrors.Wrap(propseekerrors.ErrCodeInvalidInput, err))
		return
	}

	claim, err := s.svc.StartClaim(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}
