package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"night-attendance-backend/internal/platform/apierror"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"

	RoleStudent = "student"
	RoleWarden  = "warden"
)

func abort(c *gin.Context, status int, code apierror.Code, msg string) {
	c.AbortWithStatusJSON(status, apierror.Body(code, msg))
}

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "empty token")
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			// alg 固定（none攻撃とか回避）
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || token == nil || !token.Valid {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid claims")
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid sub")
			return
		}

		role := ""
		if roleStr, ok := claims["role"].(string); ok {
			role = roleStr
		}

		c.Set(CtxUserIDKey, sub)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// RequireRole: 例) warden のみ許可したい時に追加
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			abort(c, http.StatusForbidden, apierror.CodeForbidden, "missing role")
			return
		}

		if _, allowed := roleSet[role]; !allowed {
			abort(c, http.StatusForbidden, apierror.CodeForbidden, "forbidden")
			return
		}

		c.Next()
	}
}

// Role returns the caller's role set by RequireAuth, or "".
func Role(c *gin.Context) string {
	v, ok := c.Get(CtxRoleKey)
	if !ok {
		return ""
	}
	role, _ := v.(string)
	return role
}

// SubjectID returns the numeric account id from the token subject.
func SubjectID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
