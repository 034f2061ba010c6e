package attendance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"night-attendance-backend/internal/platform/auth"
	"night-attendance-backend/internal/platform/validation"
)

func headerAuth(c *gin.Context) {
	c.Set(auth.CtxUserIDKey, c.GetHeader("X-Test-User"))
	c.Set(auth.CtxRoleKey, c.GetHeader("X-Test-Role"))
	c.Next()
}

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Setup())
	r := gin.New()
	RegisterRoutes(r, svc, headerAuth)
	return r
}

func send(r http.Handler, method, path, user, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func markBody(descriptor string) string {
	return `{"lat":26.84,"lng":75.56,"faceDescriptor":` + descriptor + `,"image":"data:image/jpeg;base64,AAAA"}`
}

func zerosJSON(n int) string {
	return "[" + strings.TrimSuffix(strings.Repeat("0,", n), ",") + "]"
}

type errorBody struct {
	Error struct {
		Code    string             `json:"code"`
		Message string             `json:"message"`
		Details map[string]float64 `json:"details"`
	} `json:"error"`
}

func TestHandler_MarkAttendance(t *testing.T) {
	repo := newFakeRepo()
	repo.enroll(7, zeros(128))
	r := newTestRouter(t, newService(repo, at(t, "2026-10-15 22:10:00"), DefaultPolicy()))

	w := send(r, http.MethodPost, "/attendance", "7", auth.RoleStudent, markBody(zerosJSON(128)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res MarkAttendanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "1.00", res.MatchScore)
	assert.Equal(t, StatusLate, res.Data.Status)
	assert.Equal(t, "2026-10-15", res.Data.Date)
	assert.Equal(t, "Attendance marked successfully!", res.Message)

	w = send(r, http.MethodPost, "/attendance", "7", auth.RoleStudent, markBody(zerosJSON(128)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var eb errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
	assert.Equal(t, string(CodeAlreadyMarked), eb.Error.Code)
}

func TestHandler_MarkAttendanceRejections(t *testing.T) {
	repo := newFakeRepo()
	repo.enroll(7, zeros(128))
	r := newTestRouter(t, newService(repo, at(t, "2026-10-15 20:00:00"), DefaultPolicy()))

	far := "[1" + strings.Repeat(",0", 127) + "]"
	w := send(r, http.MethodPost, "/attendance", "7", auth.RoleStudent, markBody(far))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var eb errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
	assert.Equal(t, string(CodeFaceMismatch), eb.Error.Code)
	assert.Equal(t, 1.0, eb.Error.Details["distance"])
	assert.Equal(t, 0.6, eb.Error.Details["threshold"])

	w = send(r, http.MethodPost, "/attendance", "8", auth.RoleStudent, markBody(zerosJSON(128)))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
	assert.Equal(t, string(CodeNotEnrolled), eb.Error.Code)

	// missing location
	w = send(r, http.MethodPost, "/attendance", "7", auth.RoleStudent, `{"faceDescriptor":[0],"image":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ARGUMENT")

	assert.Equal(t, http.StatusForbidden,
		send(r, http.MethodPost, "/attendance", "1", auth.RoleWarden, markBody(zerosJSON(128))).Code)
	assert.Zero(t, repo.writes)
}

func TestHandler_Reports(t *testing.T) {
	repo := newFakeRepo()
	repo.hostels = map[int64]string{7: "A", 8: "A"}
	repo.records[dayKey{7, "2026-10-15"}] = Attendance{StudentID: 7, AttendedOn: "2026-10-15", AttendedTime: "20:00:00", Status: StatusPresent}
	r := newTestRouter(t, newService(repo, at(t, "2026-10-15 23:00:00"), DefaultPolicy()))

	w := send(r, http.MethodGet, "/attendance/student", "7", auth.RoleStudent, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/attendance/student?limit=-1", "7", auth.RoleStudent, "").Code)

	w = send(r, http.MethodGet, "/attendance/warden?hostel=A", "1", auth.RoleWarden, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats WardenStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.TotalStudents)
	assert.EqualValues(t, 1, stats.PresentCount)
	assert.EqualValues(t, 1, stats.AbsentCount)

	assert.Equal(t, http.StatusForbidden, send(r, http.MethodGet, "/attendance/warden", "7", auth.RoleStudent, "").Code)
}
