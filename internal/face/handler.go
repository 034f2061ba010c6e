package face

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"night-attendance-backend/internal/platform/apierror"
	"night-attendance-backend/internal/platform/auth"
	"night-attendance-backend/internal/platform/validation"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.POST("/student/enroll-face", requireAuth, auth.RequireRole(auth.RoleStudent), h.Enroll)
	r.GET("/student/face/:id", requireAuth, h.GetImage)
}

// Enroll godoc
// @Summary  Enroll or replace the caller's reference face
// @Tags     student
// @Accept   json
// @Produce  json
// @Param    body body EnrollRequest true "descriptor and optional reference image"
// @Success  200 {object} EnrollResponse "replaced"
// @Success  201 {object} EnrollResponse "created"
// @Failure  400 {object} map[string]any
// @Security BearerAuth
// @Router   /student/enroll-face [post]
func (h *Handler) Enroll(c *gin.Context) {
	studentID, ok := auth.SubjectID(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("invalid token subject"))
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, validation.BindError(err))
		return
	}

	created, err := h.svc.Enroll(c.Request.Context(), studentID, req)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, EnrollResponse{Message: "Face enrolled successfully", Created: true})
		return
	}
	c.JSON(http.StatusOK, EnrollResponse{Message: "Face enrollment updated"})
}

// GetImage godoc
// @Summary  Reference face image of a student (warden, or the student themself)
// @Tags     student
// @Produce  json
// @Param    id path int true "student id"
// @Success  200 {object} FaceImageResponse
// @Failure  403 {object} map[string]any
// @Failure  404 {object} map[string]any
// @Security BearerAuth
// @Router   /student/face/{id} [get]
func (h *Handler) GetImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierror.Respond(c, apierror.Invalid("id must be a positive integer"))
		return
	}

	if auth.Role(c) != auth.RoleWarden {
		self, ok := auth.SubjectID(c)
		if !ok || self != id {
			apierror.Respond(c, apierror.Forbidden("cannot view another student's face"))
			return
		}
	}

	img, err := h.svc.Image(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, FaceImageResponse{StudentID: id, Image: img})
}
