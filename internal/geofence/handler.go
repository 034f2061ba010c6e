package geofence

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"night-attendance-backend/internal/platform/apierror"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the boundary endpoints. The boundary itself is public
// (the login page draws it); the location check needs a signed-in user.
func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.GET("/attendance/geofence", h.GetBoundary)
	r.GET("/attendance/geofence/check", requireAuth, h.CheckLocation)
}

// GetBoundary godoc
// @Summary  Campus boundary polygon
// @Tags     attendance
// @Produce  json
// @Success  200 {array} BoundaryPoint
// @Router   /attendance/geofence [get]
func (h *Handler) GetBoundary(c *gin.Context) {
	points, err := h.svc.Boundary(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// CheckLocation godoc
// @Summary  Whether a location is inside the campus boundary
// @Tags     attendance
// @Produce  json
// @Param    lat query number true "latitude"
// @Param    lng query number true "longitude"
// @Success  200 {object} CheckResponse
// @Security BearerAuth
// @Router   /attendance/geofence/check [get]
func (h *Handler) CheckLocation(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		apierror.Respond(c, apierror.Invalid("lat and lng must be valid coordinates"))
		return
	}
	res, err := h.svc.Check(c.Request.Context(), Point{Lat: lat, Lng: lng})
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
