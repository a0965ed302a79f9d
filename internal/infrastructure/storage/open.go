package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"AffairsRelay/internal/config"
	"AffairsRelay/internal/ports"
)

const connectTimeout = 10 * time.Second

// ErrNoStorageURI is returned by Open when no seen-store URI is configured.
var ErrNoStorageURI = errors.New("storage uri is empty")

// Store is a SeenStore that owns a connection.
type Store interface {
	ports.SeenStore
	Close(ctx context.Context) error
}

// Open picks a backend from the URI scheme: mongodb[+srv]://, postgres[ql]://,
// sqlite://<path> or memory://. The memory backend forgets everything on exit
// and is only used when asked for explicitly.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	uri := strings.TrimSpace(cfg.URI)
	switch {
	case uri == "":
		return nil, ErrNoStorageURI
	case strings.HasPrefix(uri, "memory://"):
		return NewMemoryStore(), nil
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return openMongo(ctx, uri, cfg.Database, cfg.Collection)
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return openSQL(ctx, "postgres", uri, sq.Dollar)
	case strings.HasPrefix(uri, "sqlite://"):
		return openSQL(ctx, "sqlite", strings.TrimPrefix(uri, "sqlite://"), sq.Question)
	default:
		return nil, fmt.Errorf("unsupported storage uri scheme: %s", redact(uri))
	}
}

func openMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := NewMongoStore(client, client.Database(database).Collection(collection))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func openSQL(ctx context.Context, driver, dsn string, placeholder sq.PlaceholderFormat) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := NewSQLStore(db, placeholder)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// redact drops credentials from a connection string before it is logged.
func redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "<redacted>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
