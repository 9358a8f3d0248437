package database

import (
	"context"
	"fmt"
	"time"

	"autocare/database/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Remote table names.
const (
	BookingsTable  = "bookings"
	ProvidersTable = "service_providers"
	UsersTable     = "users"
	ServicesTable  = "services"
	VehiclesTable  = "vehicles"
)

// Tables lists every table the service reads or writes.
var Tables = []string{BookingsTable, ProvidersTable, UsersTable, ServicesTable, VehiclesTable}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Options selects and addresses the remote store.
type Options struct {
	Driver string
	URL    string
	Name   string
}

// DB is the connected remote store. Exactly one of Mongo or Postgres is set.
type DB struct {
	Driver   string
	Mongo    *mongo.Database
	Postgres *pgxpool.Pool

	client *mongo.Client
	logger *zap.Logger
}

// Connect opens and pings the configured store.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch opts.Driver {
	case DriverMongo, "":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		logger.Info("Connected to MongoDB", zap.String("database", opts.Name))
		return &DB{Driver: DriverMongo, Mongo: client.Database(opts.Name), client: client, logger: logger}, nil

	case DriverPostgres:
		pool, err := pgxpool.New(ctx, opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping Postgres: %w", err)
		}
		logger.Info("Connected to Postgres")
		return &DB{Driver: DriverPostgres, Postgres: pool, logger: logger}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// Table binds a typed table to the connected store.
func Table[T any](db *DB, name string) store.Table[T] {
	if db.Driver == DriverPostgres {
		return store.NewPostgresTable[T](db.Postgres, name)
	}
	return store.NewMongoTable[T](db.Mongo, name)
}

// Migrate creates the tables (Postgres) or indexes (Mongo) the repositories rely on.
func (db *DB) Migrate(ctx context.Context) error {
	if db.Driver == DriverPostgres {
		for _, name := range Tables {
			if _, err := db.Postgres.Exec(ctx, store.CreateTableSQL(name)); err != nil {
				return fmt.Errorf("failed to create table %s: %w", name, err)
			}
		}
		if _, err := db.Postgres.Exec(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users ((doc->>'email'))`); err != nil {
			return fmt.Errorf("failed to create users email index: %w", err)
		}
		return nil
	}

	for _, name := range Tables {
		_, err := db.Mongo.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create id index on %s: %w", name, err)
		}
	}
	indexes := []struct {
		table string
		model mongo.IndexModel
	}{
		{UsersTable, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{BookingsTable, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		{VehiclesTable, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		{ServicesTable, mongo.IndexModel{Keys: bson.D{{Key: "provider_id", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := db.Mongo.Collection(idx.table).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.table, err)
		}
	}
	db.logger.Info("Store indexes ensured")
	return nil
}

// Ping checks the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.Driver == DriverPostgres {
		return db.Postgres.Ping(ctx)
	}
	return db.client.Ping(ctx, nil)
}

// Close releases the connection.
func (db *DB) Close(ctx context.Context) error {
	if db.Driver == DriverPostgres {
		db.Postgres.Close()
		return nil
	}
	return db.client.Disconnect(ctx)
}
