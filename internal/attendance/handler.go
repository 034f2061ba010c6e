package attendance

import (
	"fmt"
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

	// POST /attendance
	r.POST("/attendance", requireAuth, auth.RequireRole(auth.RoleStudent), h.MarkAttendance)
	// GET /attendance/student (自分の履歴)
	r.GET("/attendance/student", requireAuth, auth.RequireRole(auth.RoleStudent), h.StudentHistory)
	// GET /attendance/warden?hostel=
	r.GET("/attendance/warden", requireAuth, auth.RequireRole(auth.RoleWarden), h.WardenStats)
}

// MarkAttendance godoc
// @Summary  Mark tonight's attendance with a face descriptor and location
// @Tags     attendance
// @Accept   json
// @Produce  json
// @Param    body body MarkAttendanceRequest true "location, descriptor and captured image"
// @Success  200 {object} MarkAttendanceResponse
// @Failure  400 {object} map[string]any "INVALID_ARGUMENT, NOT_ENROLLED, FACE_MISMATCH, ALREADY_MARKED or OUTSIDE_GEOFENCE"
// @Security BearerAuth
// @Router   /attendance [post]
func (h *Handler) MarkAttendance(c *gin.Context) {
	studentID, ok := auth.SubjectID(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("invalid token subject"))
		return
	}

	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, validation.BindError(err))
		return
	}

	res, err := h.svc.MarkAttendance(c.Request.Context(), MarkInput{
		StudentID:  studentID,
		Descriptor: req.FaceDescriptor,
		Lat:        *req.Lat,
		Lng:        *req.Lng,
		Image:      req.Image,
	})
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, MarkAttendanceResponse{
		Message:    "Attendance marked successfully!",
		Data:       res.Record.toDTO(),
		MatchScore: fmt.Sprintf("%.2f", res.Match.Score()),
	})
}

// StudentHistory godoc
// @Summary  The caller's attendance history, newest first
// @Tags     attendance
// @Produce  json
// @Param    from   query string false "YYYY-MM-DD"
// @Param    to     query string false "YYYY-MM-DD"
// @Param    limit  query int    false "page size (max 200)"
// @Param    offset query int    false "offset"
// @Success  200 {object} HistoryResponse
// @Security BearerAuth
// @Router   /attendance/student [get]
func (h *Handler) StudentHistory(c *gin.Context) {
	studentID, ok := auth.SubjectID(c)
	if !ok {
		apierror.Respond(c, apierror.Unauthorized("invalid token subject"))
		return
	}

	var q HistoryQuery
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}
	var err error
	if q.Limit, err = intQuery(c, "limit"); err != nil {
		apierror.Respond(c, err)
		return
	}
	if q.Offset, err = intQuery(c, "offset"); err != nil {
		apierror.Respond(c, err)
		return
	}

	res, err := h.svc.History(c.Request.Context(), studentID, q)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(res.Total, 10))
	c.JSON(http.StatusOK, res)
}

// WardenStats godoc
// @Summary  Tonight's attendance summary for wardens
// @Tags     attendance
// @Produce  json
// @Param    hostel query string false "hostel name, or All"
// @Success  200 {object} WardenStatsResponse
// @Failure  403 {object} map[string]any
// @Security BearerAuth
// @Router   /attendance/warden [get]
func (h *Handler) WardenStats(c *gin.Context) {
	res, err := h.svc.WardenStats(c.Request.Context(), c.Query("hostel"))
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func intQuery(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apierror.Invalid(key + " must be a non-negative integer")
	}
	return n, nil
}
