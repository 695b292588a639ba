package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/backend/internal/models"
)

const (
	usersCollection         = "users"
	eventsCollection        = "events"
	registrationsCollection = "registrations"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Enrollment   string             `bson:"enrollment"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Role         string             `bson:"role"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Enrollment:   d.Enrollment,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.Role(d.Role),
	}
}

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Date        string             `bson:"date"`
	Description string             `bson:"description"`
}

type registrationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	EventID   primitive.ObjectID `bson:"eventId"`
	Timestamp time.Time          `bson:"timestamp"`
}

// MongoStore は MongoDB をバックエンドとする Store です。
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo は MongoDB に接続し、疎通確認をしてから MongoStore を返します。
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStore(client, database), nil
}

// NewMongoStore は接続済みクライアントから MongoStore を作成します。
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(database),
	}
}

// Database はセッションストアなどで共有するデータベースハンドルを返します。
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

// FindUserByEnrollment は学籍番号でユーザーを検索します。
func (s *MongoStore) FindUserByEnrollment(ctx context.Context, enrollment string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"enrollment": enrollment})
}

// FindUserByID はIDでユーザーを検索します。
// 不正な ObjectID はエラーになります。
func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.model(), nil
}

// CreateUser はユーザーを保存し、採番したIDを user.ID に設定します。
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Enrollment:   user.Enrollment,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// ListEvents は最大 limit 件のイベントを返します。
func (s *MongoStore) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	cur, err := s.db.Collection(eventsCollection).Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, models.Event{
			ID:          d.ID.Hex(),
			Title:       d.Title,
			Date:        d.Date,
			Description: d.Description,
		})
	}
	return events, nil
}

// CountEvents はイベントの件数を返します。
func (s *MongoStore) CountEvents(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(eventsCollection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CreateEvent はイベントを保存し、採番したIDを event.ID に設定します。
func (s *MongoStore) CreateEvent(ctx context.Context, event *models.Event) error {
	doc := eventDoc{
		ID:          primitive.NewObjectID(),
		Title:       event.Title,
		Date:        event.Date,
		Description: event.Description,
	}
	if _, err := s.db.Collection(eventsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	event.ID = doc.ID.Hex()
	return nil
}

// FindRegistration は (userID, eventID) の参加登録を検索します。
func (s *MongoStore) FindRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	uid, eid, err := registrationPair(userID, eventID)
	if err != nil {
		return nil, err
	}
	var doc registrationDoc
	err = s.db.Collection(registrationsCollection).
		FindOne(ctx, bson.M{"userId": uid, "eventId": eid}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &models.Registration{
		ID:        doc.ID.Hex(),
		UserID:    doc.UserID.Hex(),
		EventID:   doc.EventID.Hex(),
		Timestamp: doc.Timestamp,
	}, nil
}

// CreateRegistration は参加登録を保存します。
func (s *MongoStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	uid, eid, err := registrationPair(reg.UserID, reg.EventID)
	if err != nil {
		return err
	}
	doc := registrationDoc{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		EventID:   eid,
		Timestamp: reg.Timestamp,
	}
	if _, err := s.db.Collection(registrationsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	reg.ID = doc.ID.Hex()
	return nil
}

// Close は接続を閉じます。
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func registrationPair(userID, eventID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	eid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid event id %q: %w", eventID, err)
	}
	return uid, eid, nil
}
