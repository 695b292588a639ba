// Package store はユーザー・イベント・参加登録の永続化を提供します。
//
// 重複チェック（学籍番号・参加登録）は読み取り後に書き込む方式で、
// ストレージ側の一意制約は設けていません。同時リクエストでは重複し得ます。
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/models"
)

// ErrNotFound は対象のドキュメントが存在しない場合に返されます。
var ErrNotFound = errors.New("store: not found")

// Store は永続化レイヤーのインターフェースです。
type Store interface {
	FindUserByEnrollment(ctx context.Context, enrollment string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	ListEvents(ctx context.Context, limit int) ([]models.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	CreateEvent(ctx context.Context, event *models.Event) error

	FindRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error)
	CreateRegistration(ctx context.Context, reg *models.Registration) error

	Close(ctx context.Context) error
}

// Open は設定に応じたストアを開きます。
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite, config.DriverPostgres:
		return OpenSQL(cfg.DatabaseDriver, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
}
