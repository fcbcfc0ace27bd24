package database

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDatabase = "researchhive"

// ConnectMongo dials MongoDB and pings the primary. The database name is dbName when set,
// otherwise the path component of the URI, otherwise "researchhive".
func ConnectMongo(ctx context.Context, mongoURI, dbName string) (*mongo.Database, error) {
	// Atlas clusters can take a while to select a server
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	slog.Info("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if dbName == "" {
		dbName = databaseFromURI(mongoURI)
	}
	slog.Info("connected to MongoDB", "database", dbName)
	return client.Database(dbName), nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultDatabase
}
