package students

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"night-attendance-backend/internal/platform/apierror"
	"night-attendance-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.GET("/student/profile", requireAuth, auth.RequireRole(auth.RoleStudent), h.Profile)
	r.GET("/student/all", requireAuth, auth.RequireRole(auth.RoleWarden), h.Roster)
}

// Profile godoc
// @Summary  The caller's student profile
// @Tags     student
// @Produce  json
// @Success  200 {object} Student
// @Failure  404 {object} map[string]any
// @Security BearerAuth
// @Router   /student/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	id, ok := auth.SubjectID(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("invalid token subject"))
		return
	}
	st, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Roster godoc
// @Summary  Students of a hostel
// @Tags     student
// @Produce  json
// @Param    hostel query string false "hostel name, or All"
// @Success  200 {array} Student
// @Security BearerAuth
// @Router   /student/all [get]
func (h *Handler) Roster(c *gin.Context) {
	list, err := h.svc.Roster(c.Request.Context(), c.Query("hostel"))
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
