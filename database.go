package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// MongoDatabase wraps the driver client and the default database named in
// the connection string. All operations run against that database.
type MongoDatabase struct {
	client *mongo.Client
	dbName string
}

// defaultDatabase extracts the database path component from a connection
// string. A connection string without one is an error rather than a silent
// fallback.
func defaultDatabase(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid connection string: %w", err)
	}
	if cs.Database == "" {
		return "", fmt.Errorf("connection string has no default database, expected mongodb://host/dbname")
	}
	return cs.Database, nil
}

// NewMongoDatabase connects to the server behind uri and verifies the
// connection with a ping.
func NewMongoDatabase(ctx context.Context, uri string) (*MongoDatabase, error) {
	dbName, err := defaultDatabase(uri)
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(MaxPoolSize).
		SetConnectTimeout(ConnectTimeout).
		SetServerSelectionTimeout(ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, ConnectTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnect(client)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &MongoDatabase{client: client, dbName: dbName}, nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), DisconnectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logError("Failed to disconnect client: %v", err)
	}
}

// Close releases the driver's connections.
func (d *MongoDatabase) Close() {
	disconnect(d.client)
}

func (d *MongoDatabase) database() *mongo.Database {
	return d.client.Database(d.dbName)
}

// Find runs a filtered, projected, limited find against a collection. The
// bool result reports whether the result set was truncated.
func (d *MongoDatabase) Find(ctx context.Context, collection string, filter, projection map[string]any, limit int) ([]bson.M, bool, error) {
	opts := options.Find().SetLimit(findLimit(limit))
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	cur, err := d.database().Collection(collection).Find(ctx, orEmpty(filter), opts)
	if err != nil {
		return nil, false, err
	}
	return drainCursor(ctx, cur)
}

// Aggregate runs a pipeline against a collection.
func (d *MongoDatabase) Aggregate(ctx context.Context, collection string, pipeline []any) ([]bson.M, bool, error) {
	cur, err := d.database().Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, false, err
	}
	return drainCursor(ctx, cur)
}

// Count returns the number of documents matching filter.
func (d *MongoDatabase) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	return d.database().Collection(collection).CountDocuments(ctx, orEmpty(filter))
}

// BuildInfo runs the buildInfo command and projects the reported fields.
func (d *MongoDatabase) BuildInfo(ctx context.Context) (*serverBuildInfo, error) {
	var info serverBuildInfo
	if err := d.database().RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListCollections returns the collection names of the default database.
func (d *MongoDatabase) ListCollections(ctx context.Context) ([]string, error) {
	return d.database().ListCollectionNames(ctx, bson.D{})
}

// ListIndexes returns a collection's index specifications.
func (d *MongoDatabase) ListIndexes(ctx context.Context, collection string) ([]bson.M, error) {
	cur, err := d.database().Collection(collection).Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	docs, _, err := drainCursor(ctx, cur)
	return docs, err
}

// findLimit converts a clamped request limit into the driver-side cursor
// limit. When the cap is in play the cursor asks for one extra document so
// drainCursor can tell a full result from a truncated one.
func findLimit(limit int) int64 {
	if limit >= MaxResultDocs {
		return int64(MaxResultDocs) + 1
	}
	return int64(limit)
}

// drainCursor reads documents from cur, stopping at MaxResultDocs. The bool
// result reports whether truncation happened.
func drainCursor(ctx context.Context, cur *mongo.Cursor) ([]bson.M, bool, error) {
	defer cur.Close(ctx)

	var docs []bson.M
	for cur.Next(ctx) {
		if len(docs) >= MaxResultDocs {
			return docs, true, nil
		}
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, false, fmt.Errorf("failed to decode document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, false, fmt.Errorf("cursor error: %w", err)
	}
	return docs, false, nil
}

// orEmpty substitutes an empty document for a nil filter; the driver rejects
// nil filters.
func orEmpty(filter map[string]any) any {
	if len(filter) == 0 {
		return bson.D{}
	}
	return filter
}

// formatDocs renders documents as an indented JSON array, each document in
// relaxed Extended JSON. A truncated result gets a trailing warning marker.
func formatDocs(docs []bson.M, truncated bool) (string, error) {
	out := make([]any, 0, len(docs)+1)
	for i, doc := range docs {
		ext, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return "", fmt.Errorf("failed to marshal document %d: %w", i+1, err)
		}
		var v any
		if err := json.Unmarshal(ext, &v); err != nil {
			return "", fmt.Errorf("failed to re-read document %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	if truncated {
		out = append(out, map[string]any{
			"_warning": fmt.Sprintf("Result truncated at %d documents", MaxResultDocs),
		})
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(text), nil
}
