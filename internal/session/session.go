// Package session はクッキーのトークンとサーバー側セッションレコードの対応付けを提供します。
//
// バックエンドは memory / mongo / redis から選択し、いずれも
// github.com/gin-contrib/sessions のミドルウェア経由でリクエストに注入されます。
package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-contrib/sessions/mongo/mongodriver"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/backend/internal/config"
)

const (
	// CookieName はセッションクッキーの名前です。
	CookieName = "cc_session"

	sessionsCollection = "sessions"
	keyUserID          = "userId"
)

// Backend は選択されたストアと、その後始末処理をまとめたものです。
type Backend struct {
	Store sessions.Store
	close func(context.Context) error
}

// Close はストアが保持する接続を閉じます。
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open は設定に応じてセッションストアを作成します。
// db が nil でない場合、mongo バックエンドはその接続を共有します。
func Open(ctx context.Context, cfg *config.Config, db *mongo.Database) (*Backend, error) {
	secret := []byte(cfg.SessionSecret)
	maxAge := int(cfg.SessionMaxAge.Seconds())

	var backend Backend
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		backend.Store = memstore.NewStore(secret)

	case config.SessionStoreMongo:
		if db == nil {
			client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
			if err != nil {
				return nil, fmt.Errorf("connect mongo session store: %w", err)
			}
			db = client.Database(cfg.MongoDatabase)
			backend.close = client.Disconnect
		}
		backend.Store = mongodriver.NewStore(db.Collection(sessionsCollection), maxAge, true, secret)

	case config.SessionStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		backend.Store = NewRedisStore(client, maxAge, secret)
		backend.close = func(context.Context) error { return client.Close() }

	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}

	backend.Store.Options(CookieOptions(cfg))
	return &backend, nil
}

// CookieOptions はセッションクッキーの属性を返します。
// release モードではフロントエンドが別オリジンのため SameSite=None + Secure にします。
func CookieOptions(cfg *config.Config) sessions.Options {
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.IsRelease() {
		opts.Secure = true
		opts.SameSite = http.SameSiteNoneMode
	}
	return opts
}

// Middleware はセッションをリクエストコンテキストに注入するミドルウェアです。
func Middleware(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(CookieName, store)
}

// UserID はセッションに紐づくユーザーIDを返します。未ログインなら空文字です。
func UserID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(keyUserID).(string)
	return id
}

// SetUserID はセッションにユーザーIDを書き込み、保存します。
func SetUserID(c *gin.Context, userID string) error {
	s := sessions.Default(c)
	s.Set(keyUserID, userID)
	if err := s.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy はセッションレコードを削除し、クッキーを失効させます。
// セッションが存在しない場合も成功します。
func Destroy(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
