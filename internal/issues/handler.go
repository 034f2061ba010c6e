package issues

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"night-attendance-backend/internal/platform/apierror"
	"night-attendance-backend/internal/platform/auth"
	"night-attendance-backend/internal/platform/validation"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.POST("/issues", requireAuth, auth.RequireRole(auth.RoleStudent), h.Report)
	r.GET("/issues", requireAuth, auth.RequireRole(auth.RoleWarden), h.List)
}

// Report godoc
// @Summary  Report a hostel issue
// @Tags     issues
// @Accept   json
// @Produce  json
// @Param    body body CreateIssueRequest true "issue"
// @Success  201 {object} CreateIssueResponse
// @Failure  400 {object} map[string]any
// @Security BearerAuth
// @Router   /issues [post]
func (h *Handler) Report(c *gin.Context) {
	studentID, ok := auth.SubjectID(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("invalid token subject"))
		return
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, validation.BindError(err))
		return
	}

	is, err := h.svc.Report(c.Request.Context(), studentID, req)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateIssueResponse{Message: "Issue reported successfully.", Data: *is})
}

// List godoc
// @Summary  All reported issues, newest first
// @Tags     issues
// @Produce  json
// @Success  200 {array} IssueWithReporter
// @Security BearerAuth
// @Router   /issues [get]
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
