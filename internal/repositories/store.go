package repositories

import (
	"context"
	"fmt"

	"arthemis/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported values of Options.Driver.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and configures the storage backend.
type Options struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// Store bundles the repositories of one backend.
type Store struct {
	Users       UserRepository
	Artworks    ArtworkRepository
	Collections CollectionRepository
	Comments    CommentRepository

	driver string
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// Open connects to the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverMongo:
		client, db, err := ConnectMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := InitMongo(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return NewMongoStore(client, db), nil
	case DriverPostgres:
		return openGORM(postgres.Open(opts.DSN), DriverPostgres)
	case DriverSQLite:
		return openGORM(sqlite.Open(opts.DSN), DriverSQLite)
	}
	return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
}

func openGORM(dialector gorm.Dialector, driver string) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	s := NewGORMStore(db)
	s.driver = driver
	return s, nil
}

// Migrate creates or updates the relational schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Artwork{}, &models.Collection{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// NewMemoryStore returns a store backed by in-memory maps.
func NewMemoryStore() *Store {
	return &Store{
		Users:       NewMemoryUserRepository(),
		Artworks:    NewMemoryArtworkRepository(),
		Collections: NewMemoryCollectionRepository(),
		Comments:    NewMemoryCommentRepository(),
		driver:      DriverMemory,
	}
}

// NewGORMStore returns a store backed by an open GORM connection. The
// connection should have TranslateError enabled.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:       NewGORMUserRepository(db),
		Artworks:    NewGORMArtworkRepository(db),
		Collections: NewGORMCollectionRepository(db),
		Comments:    NewGORMCommentRepository(db),
		driver:      db.Dialector.Name(),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMongoStore returns a store backed by a MongoDB database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Users:       NewMongoUserRepository(db),
		Artworks:    NewMongoArtworkRepository(db),
		Collections: NewMongoCollectionRepository(db),
		Comments:    NewMongoCommentRepository(db),
		driver:      DriverMongo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}

// Driver names the backend in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
