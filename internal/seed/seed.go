// Package seed は開発用の管理者アカウントとサンプルイベントを投入します。
package seed

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/backend/internal/auth"
	"github.com/campusconnect/backend/internal/httperr"
	"github.com/campusconnect/backend/internal/models"
	"github.com/campusconnect/backend/internal/store"
)

const (
	AdminEnrollment = "ADMIN001"
	AdminPassword   = "adminpass"
)

var sampleEvents = []models.Event{
	{Title: "Coding Hackathon", Date: "2025-11-01", Description: "Team-based competition"},
	{Title: "AI Talk", Date: "2025-12-05", Description: "Guest lecture on AI"},
}

// Seeder はシードデータの投入処理です。何度実行しても結果は同じです。
type Seeder struct {
	store      store.Store
	bcryptCost int
}

// NewSeeder は Seeder を作成します。
func NewSeeder(st store.Store, bcryptCost int) *Seeder {
	return &Seeder{store: st, bcryptCost: bcryptCost}
}

// Run は管理者が存在しなければ作成し、イベントが0件ならサンプルを作成します。
func (s *Seeder) Run(ctx context.Context) error {
	_, err := s.store.FindUserByEnrollment(ctx, AdminEnrollment)
	switch {
	case errors.Is(err, store.ErrNotFound):
		hash, err := auth.HashPassword(AdminPassword, s.bcryptCost)
		if err != nil {
			return err
		}
		admin := &models.User{
			Name:         "Admin",
			Enrollment:   AdminEnrollment,
			Email:        "admin@college.edu",
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if err := s.store.CreateUser(ctx, admin); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	count, err := s.store.CountEvents(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, e := range sampleEvents {
		event := e
		if err := s.store.CreateEvent(ctx, &event); err != nil {
			return err
		}
	}
	return nil
}

// Handler は GET /api/seed のハンドラーです。
func (s *Seeder) Handler(c *gin.Context) {
	if err := s.Run(c.Request.Context()); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "seeded"})
}
