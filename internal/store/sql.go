package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/models"
)

// SQLStore は GORM 経由で SQLite / PostgreSQL を使う Store です。
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL はドライバー名と DSN から SQLStore を開き、テーブルをマイグレーションします。
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// FindUserByEnrollment は学籍番号でユーザーを検索します。
func (s *SQLStore) FindUserByEnrollment(ctx context.Context, enrollment string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("enrollment = ?", enrollment).First(&user).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	return &user, nil
}

// FindUserByID はIDでユーザーを検索します。
func (s *SQLStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	return &user, nil
}

// CreateUser はユーザーを保存し、採番したIDを user.ID に設定します。
func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ListEvents は最大 limit 件のイベントを返します。
func (s *SQLStore) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	events := make([]models.Event, 0)
	if err := s.db.WithContext(ctx).Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

// CountEvents はイベントの件数を返します。
func (s *SQLStore) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CreateEvent はイベントを保存し、採番したIDを event.ID に設定します。
func (s *SQLStore) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// FindRegistration は (userID, eventID) の参加登録を検索します。
func (s *SQLStore) FindRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&reg).Error
	if err != nil {
		return nil, notFound(err, "find registration")
	}
	return &reg, nil
}

// CreateRegistration は参加登録を保存します。
func (s *SQLStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	reg.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Close は接続を閉じます。
func (s *SQLStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
