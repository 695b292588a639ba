// Package auth はサインアップ・ログイン・ログアウト・ログインユーザー取得を提供します。
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusconnect/backend/internal/httperr"
	"github.com/campusconnect/backend/internal/metrics"
	"github.com/campusconnect/backend/internal/models"
	"github.com/campusconnect/backend/internal/session"
	"github.com/campusconnect/backend/internal/store"
)

// Manager は認証系ハンドラーの依存をまとめた構造体です。
type Manager struct {
	store      store.Store
	bcryptCost int
	logger     zerolog.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(st store.Store, bcryptCost int, logger zerolog.Logger) *Manager {
	if bcryptCost <= 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Manager{
		store:      st,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// errPasswordMissing はパスワードが送られなかったリクエストのエラーです。
// 4xx には変換せず、Boundary で 500 として扱います。
var errPasswordMissing = errors.New("password field is missing")

// スキーマ検証は行わない。欠けたフィールドは空文字になる。
// パスワードだけは欠落と空文字を区別する。
type signupRequest struct {
	Name       string  `json:"name"`
	Enrollment string  `json:"enrollment"`
	Email      string  `json:"email"`
	Password   *string `json:"password"`
}

type loginRequest struct {
	Enrollment string  `json:"enrollment"`
	Password   *string `json:"password"`
}

// Signup は POST /api/signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	var req signupRequest
	if err := httperr.BindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}
	ctx := c.Request.Context()

	_, err := m.store.FindUserByEnrollment(ctx, req.Enrollment)
	if err == nil {
		metrics.AuthAttempts.WithLabelValues("signup", "duplicate").Inc()
		httperr.Respond(c, httperr.ErrDuplicateEnrollment)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		httperr.Respond(c, err)
		return
	}

	if req.Password == nil {
		httperr.Respond(c, errPasswordMissing)
		return
	}
	hash, err := HashPassword(*req.Password, m.bcryptCost)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Enrollment:   req.Enrollment,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
	}
	if err := m.store.CreateUser(ctx, user); err != nil {
		httperr.Respond(c, err)
		return
	}
	if err := session.SetUserID(c, user.ID); err != nil {
		httperr.Respond(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("signup", "ok").Inc()
	m.logger.Info().Str("user_id", user.ID).Str("enrollment", user.Enrollment).Msg("user signed up")
	c.JSON(http.StatusOK, gin.H{"message": "ok", "user": user.Profile()})
}

// Login は POST /api/login のハンドラーです。
// 学籍番号が存在しない場合とパスワード不一致は同じ応答にします。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := httperr.BindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	user, err := m.store.FindUserByEnrollment(c.Request.Context(), req.Enrollment)
	if errors.Is(err, store.ErrNotFound) {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		httperr.Respond(c, httperr.ErrInvalidCredentials)
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if req.Password == nil {
		httperr.Respond(c, errPasswordMissing)
		return
	}
	if !VerifyPassword(user.PasswordHash, *req.Password) {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		httperr.Respond(c, httperr.ErrInvalidCredentials)
		return
	}

	if err := session.SetUserID(c, user.ID); err != nil {
		httperr.Respond(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "ok", "user": user.Profile()})
}

// Logout は POST /api/logout のハンドラーです。未ログインでも成功します。
func (m *Manager) Logout(c *gin.Context) {
	if err := session.Destroy(c); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me は GET /api/me のハンドラーです。
// 未ログイン、またはセッションのユーザーが既に存在しない場合は {user: null} を返します。
func (m *Manager) Me(c *gin.Context) {
	userID := session.UserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	user, err := m.store.FindUserByID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
