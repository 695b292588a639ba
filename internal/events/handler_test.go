package events

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/backend/internal/httperr"
	"github.com/campusconnect/backend/internal/models"
	"github.com/campusconnect/backend/internal/session"
	"github.com/campusconnect/backend/internal/store/storetest"
)

var fixedNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestRouter(st *storetest.Memory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessionStore := memstore.NewStore([]byte("test-secret"))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 3600})

	h := NewHandler(st, zerolog.Nop())
	h.now = func() time.Time { return fixedNow }

	router := gin.New()
	router.Use(session.Middleware(sessionStore), httperr.Boundary(zerolog.Nop()))
	router.POST("/as/:id", func(c *gin.Context) {
		_ = session.SetUserID(c, c.Param("id"))
		c.Status(http.StatusOK)
	})
	router.GET("/api/events", h.List)
	router.POST("/api/events", h.Create)
	router.POST("/api/events/:id/register", h.Register)
	return router
}

// loginAs はセッションにユーザーIDを書き込み、そのクッキーを返します。
func loginAs(t *testing.T, router *gin.Engine, userID string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/as/"+userID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func request(router *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateWithStaleSessionIsForbidden(t *testing.T) {
	st := storetest.NewMemory()
	router := newTestRouter(st)
	cookies := loginAs(t, router, "deleted-user")

	rec := request(router, http.MethodPost, "/api/events", `{"title":"T"}`, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Not authorized"}`, rec.Body.String())
}

func TestCreateByAdmin(t *testing.T) {
	st := storetest.NewMemory()
	adminID := st.AddUser(models.User{Name: "Admin", Enrollment: "ADMIN001", Role: models.RoleAdmin})
	router := newTestRouter(st)
	cookies := loginAs(t, router, adminID)

	rec := request(router, http.MethodPost, "/api/events", `{"title":"T","date":"2025-01-01","description":"D"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"event-2","title":"T","date":"2025-01-01","description":"D"}`, rec.Body.String())
}

func TestCreateStoreFailure(t *testing.T) {
	st := storetest.NewMemory()
	adminID := st.AddUser(models.User{Role: models.RoleAdmin})
	router := newTestRouter(st)
	cookies := loginAs(t, router, adminID)
	st.Err = errors.New("connection reset")

	rec := request(router, http.MethodPost, "/api/events", `{"title":"T"}`, cookies)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong!"}`, rec.Body.String())
}

func TestRegisterStoresTimestamp(t *testing.T) {
	st := storetest.NewMemory()
	router := newTestRouter(st)
	cookies := loginAs(t, router, "user-1")

	rec := request(router, http.MethodPost, "/api/events/event-9/register", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	regs := st.Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, "user-1", regs[0].UserID)
	assert.Equal(t, "event-9", regs[0].EventID)
	assert.Equal(t, fixedNow, regs[0].Timestamp)

	rec = request(router, http.MethodPost, "/api/events/event-9/register", "", cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, st.Registrations(), 1)

	// 別ユーザーは同じイベントに登録できる
	other := loginAs(t, router, "user-2")
	rec = request(router, http.MethodPost, "/api/events/event-9/register", "", other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, st.Registrations(), 2)
}

func TestRegisterStoreFailure(t *testing.T) {
	st := storetest.NewMemory()
	router := newTestRouter(st)
	cookies := loginAs(t, router, "user-1")
	st.Err = errors.New("timeout")

	rec := request(router, http.MethodPost, "/api/events/e/register", "", cookies)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, st.Registrations())
}

func TestListStoreFailure(t *testing.T) {
	st := storetest.NewMemory()
	st.Err = errors.New("down")

	rec := request(newTestRouter(st), http.MethodGet, "/api/events", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong!"}`, rec.Body.String())
}
