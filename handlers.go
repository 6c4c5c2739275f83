package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.mongodb.org/mongo-driver/bson"
)

// Dispatch is handled by the MCP library, but every handler re-checks the
// allow-list so the read-only gate does not depend on registration alone.
func guardTool(request mcp.CallToolRequest) *mcp.CallToolResult {
	if err := validateToolName(request.Params.Name); err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return nil
}

func (s *MongoMCPServer) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if rejected := guardTool(request); rejected != nil {
		return rejected, nil
	}

	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateCollectionName(collection); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	filter, err := objectArg(args, "filter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projection, err := objectArg(args, "projection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := intArg(args, "limit", DefaultFindLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := validateFilter(filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Filter rejected: %v", err)), nil
	}
	if err := validateProjection(projection); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Projection rejected: %v", err)), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	docs, truncated, err := s.db.Find(queryCtx, collection, filter, projection, clampLimit(limit))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Find error: %v", err)), nil
	}
	return documentsResult(docs, truncated)
}

func (s *MongoMCPServer) handleAggregate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if rejected := guardTool(request); rejected != nil {
		return rejected, nil
	}

	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateCollectionName(collection); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pipeline, err := arrayArg(request.GetArguments(), "pipeline")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validatePipeline(pipeline); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Pipeline rejected: %v", err)), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	docs, truncated, err := s.db.Aggregate(queryCtx, collection, pipeline)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Aggregation error: %v", err)), nil
	}
	return documentsResult(docs, truncated)
}

func (s *MongoMCPServer) handleCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if rejected := guardTool(request); rejected != nil {
		return rejected, nil
	}

	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateCollectionName(collection); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filter, err := objectArg(request.GetArguments(), "filter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateFilter(filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Filter rejected: %v", err)), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	count, err := s.db.Count(queryCtx, collection, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Count error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", count)), nil
}

func (s *MongoMCPServer) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if rejected := guardTool(request); rejected != nil {
		return rejected, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	info, err := s.db.BuildInfo(queryCtx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("buildInfo error: %v", err)), nil
	}

	text, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal server info: %v", err)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

func (s *MongoMCPServer) handleListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if rejected := guardTool(request); rejected != nil {
		return rejected, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	names, err := s.db.ListCollections(queryCtx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listCollections error: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}

	text, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal collection names: %v", err)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

// handleReadIndexes serves index listings behind
// mongodb://dbname/collection/indexes resource reads.
func (s *MongoMCPServer) handleReadIndexes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	collection, err := collectionFromIndexURI(s.db.dbName, request.Params.URI)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	indexes, err := s.db.ListIndexes(queryCtx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes for %s: %w", collection, err)
	}
	text, err := formatDocs(indexes, false)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

// collectionFromIndexURI parses a mongodb://dbname/collection/indexes URI,
// rejecting URIs that point at another database.
func collectionFromIndexURI(database, uri string) (string, error) {
	if !strings.HasPrefix(uri, "mongodb://") {
		return "", fmt.Errorf("invalid resource URI: must start with mongodb://")
	}

	parts := strings.Split(strings.TrimPrefix(uri, "mongodb://"), "/")
	if len(parts) != 3 || parts[2] != "indexes" {
		return "", fmt.Errorf("invalid resource URI format: expected mongodb://dbname/collection/indexes")
	}
	if parts[0] != database {
		return "", fmt.Errorf("unknown database %q in resource URI", parts[0])
	}
	if err := validateCollectionName(parts[1]); err != nil {
		return "", err
	}
	return parts[1], nil
}

func documentsResult(docs []bson.M, truncated bool) (*mcp.CallToolResult, error) {
	text, err := formatDocs(docs, truncated)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// objectArg extracts an optional object argument. Absent or null arguments
// yield a nil map.
func objectArg(args map[string]any, key string) (map[string]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an object", key)
	}
	return obj, nil
}

// arrayArg extracts a required array argument.
func arrayArg(args map[string]any, key string) ([]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("missing required parameter %q", key)
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an array", key)
	}
	return arr, nil
}

// intArg extracts an optional integer argument. JSON numbers arrive as
// float64.
func intArg(args map[string]any, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("parameter %q must be an integer", key)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
}
