// Package server assembles the gin engine from the feature packages.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "night-attendance-backend/docs"
	"night-attendance-backend/internal/attendance"
	"night-attendance-backend/internal/face"
	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/issues"
	"night-attendance-backend/internal/platform/apierror"
	"night-attendance-backend/internal/platform/auth"
	"night-attendance-backend/internal/platform/config"
	"night-attendance-backend/internal/platform/media"
	"night-attendance-backend/internal/platform/validation"
	"night-attendance-backend/internal/students"
)

// NewRouter wires every feature against conn. conn is only used lazily by the
// stores, so a router can be built before the database is reachable.
func NewRouter(cfg *config.Config, conn *sql.DB) (*gin.Engine, error) {
	if err := validation.Setup(); err != nil {
		return nil, err
	}

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(limitBody(cfg.Server.MaxBodyBytes))

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if cfg.Mode == config.ModeDev {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	images := media.NewValidator(cfg.Server.MaxImageBytes)
	requireAuth := auth.RequireAuth([]byte(cfg.Auth.JWTSecret))

	fenceStore := geofence.NewStore(conn)
	fence := geofence.NewService(fenceStore)

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(auth.NewStore(conn), fence, tokens, *cfg.Auth.RequireGeofence)

	attStore := attendance.NewStore(conn)
	attSvc := attendance.NewService(attStore, attStore, fence, images, attendance.Policy{
		Location:        cfg.Location(),
		LateHour:        cfg.Attendance.LateHour,
		Threshold:       cfg.Attendance.FaceThreshold,
		EnforceGeofence: cfg.Attendance.EnforceGeofence,
	})

	// /api
	api := r.Group("/api")
	auth.RegisterRoutes(api, authSvc)
	geofence.RegisterRoutes(api, fence, requireAuth)
	attendance.RegisterRoutes(api, attSvc, requireAuth)
	face.RegisterRoutes(api, face.NewService(face.NewStore(conn), images, cfg.Attendance.DescriptorLength), requireAuth)
	students.RegisterRoutes(api, students.NewService(students.NewStore(conn)), requireAuth)
	issues.RegisterRoutes(api, issues.NewService(issues.NewStore(conn)), requireAuth)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.Body(apierror.CodeNotFound, "route not found"))
	})
	return r, nil
}

// limitBody caps request bodies; oversized JSON then fails to bind with 400.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
