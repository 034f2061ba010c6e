package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"night-attendance-backend/internal/platform/apierror"
)

type AuthHandler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &AuthHandler{svc: svc}
	r.POST("/auth/login", h.Login)
}

// Login godoc
// @Summary  Sign in as a warden or a student
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials and, for students, the current location"
// @Success  200 {object} LoginResponse
// @Failure  400 {object} map[string]any
// @Failure  401 {object} map[string]any
// @Failure  403 {object} map[string]any
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Body(apierror.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
