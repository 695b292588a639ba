// Package events はイベント一覧・作成・参加登録のハンドラーを提供します。
package events

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusconnect/backend/internal/httperr"
	"github.com/campusconnect/backend/internal/metrics"
	"github.com/campusconnect/backend/internal/models"
	"github.com/campusconnect/backend/internal/session"
	"github.com/campusconnect/backend/internal/store"
)

// ListLimit は一覧で返すイベントの最大件数です。
const ListLimit = 50

// Handler はイベント系ハンドラーの依存をまとめた構造体です。
type Handler struct {
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewHandler は Handler を作成します。
func NewHandler(st store.Store, logger zerolog.Logger) *Handler {
	return &Handler{store: st, logger: logger, now: time.Now}
}

// 未知のフィールドは捨て、必須項目も設けない。
type createRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// List は GET /api/events のハンドラーです。
func (h *Handler) List(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context(), ListLimit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Create は POST /api/events のハンドラーです。管理者のみ作成できます。
func (h *Handler) Create(c *gin.Context) {
	userID := session.UserID(c)
	if userID == "" {
		httperr.Respond(c, httperr.ErrNotLoggedIn)
		return
	}
	ctx := c.Request.Context()

	user, err := h.store.FindUserByID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		httperr.Respond(c, err)
		return
	}
	if user == nil || !user.Role.IsAdmin() {
		httperr.Respond(c, httperr.ErrNotAuthorized)
		return
	}

	var req createRequest
	if err := httperr.BindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}
	event := &models.Event{
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
	}
	if err := h.store.CreateEvent(ctx, event); err != nil {
		httperr.Respond(c, err)
		return
	}

	h.logger.Info().Str("event_id", event.ID).Str("created_by", userID).Msg("event created")
	c.JSON(http.StatusOK, event)
}

// Register は POST /api/events/:id/register のハンドラーです。
// イベントの存在は確認しません。
func (h *Handler) Register(c *gin.Context) {
	userID := session.UserID(c)
	if userID == "" {
		httperr.Respond(c, httperr.ErrLoginRequired)
		return
	}
	ctx := c.Request.Context()
	eventID := c.Param("id")

	_, err := h.store.FindRegistration(ctx, userID, eventID)
	if err == nil {
		metrics.EventRegistrations.WithLabelValues("duplicate").Inc()
		httperr.Respond(c, httperr.ErrAlreadyRegistered)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		httperr.Respond(c, err)
		return
	}

	reg := &models.Registration{
		UserID:    userID,
		EventID:   eventID,
		Timestamp: h.now().UTC(),
	}
	if err := h.store.CreateRegistration(ctx, reg); err != nil {
		httperr.Respond(c, err)
		return
	}

	metrics.EventRegistrations.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "registered"})
}
