package students

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"night-attendance-backend/internal/platform/auth"
)

type fakeRepo struct {
	students []Student
	err      error
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*Student, error) {
	for i := range f.students {
		if f.students[i].ID == id {
			return &f.students[i], f.err
		}
	}
	return nil, f.err
}

func (f *fakeRepo) List(_ context.Context, hostel string) ([]Student, error) {
	var out []Student
	for _, s := range f.students {
		if hostel == AllHostels || (s.Hostel != nil && *s.Hostel == hostel) {
			out = append(out, s)
		}
	}
	return out, f.err
}

func str(s string) *string { return &s }

func newFake() *fakeRepo {
	return &fakeRepo{students: []Student{
		{ID: 7, RegNo: "R7", Name: "Asha", Email: "asha@campus.edu", Hostel: str("GH-1"), Enrolled: true},
		{ID: 8, RegNo: "R8", Name: "Ravi", Email: "ravi@campus.edu", Hostel: str("BH-2")},
	}}
}

func headerAuth(c *gin.Context) {
	c.Set(auth.CtxUserIDKey, c.GetHeader("X-Test-User"))
	c.Set(auth.CtxRoleKey, c.GetHeader("X-Test-Role"))
	c.Next()
}

func call(r http.Handler, path, user, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRouter(repo *fakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(repo), headerAuth)
	return r
}

func TestHandler_Profile(t *testing.T) {
	r := newRouter(newFake())

	w := call(r, "/student/profile", "7", auth.RoleStudent)
	require.Equal(t, http.StatusOK, w.Code)
	var st map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "Asha", st["name"])
	assert.Equal(t, true, st["enrolled"])
	assert.NotContains(t, st, "password_hash")

	assert.Equal(t, http.StatusNotFound, call(r, "/student/profile", "99", auth.RoleStudent).Code)
	assert.Equal(t, http.StatusForbidden, call(r, "/student/profile", "1", auth.RoleWarden).Code)
}

func TestHandler_Roster(t *testing.T) {
	r := newRouter(newFake())

	for _, tt := range []struct {
		path string
		want int
	}{
		{"/student/all", 2},
		{"/student/all?hostel=All", 2},
		{"/student/all?hostel=GH-1", 1},
		{"/student/all?hostel=nowhere", 0},
	} {
		w := call(r, tt.path, "1", auth.RoleWarden)
		require.Equal(t, http.StatusOK, w.Code, tt.path)
		var list []Student
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, tt.want, tt.path)
	}

	assert.Equal(t, http.StatusForbidden, call(r, "/student/all", "7", auth.RoleStudent).Code)
}

func TestHandler_RosterStoreError(t *testing.T) {
	repo := newFake()
	repo.err = errors.New("db down")
	w := call(newRouter(repo), "/student/all", "1", auth.RoleWarden)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
