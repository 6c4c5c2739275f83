package main

import "github.com/mark3labs/mcp-go/mcp"

// The five tool definitions making up the read-only surface. Names must
// match the allow-list in validation.go.
var (
	findTool = mcp.NewTool(
		"find",
		mcp.WithDescription("Run a read-only query against a collection in the default database"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Name of the collection to query"),
		),
		mcp.WithObject("filter",
			mcp.Description("MongoDB query filter document"),
		),
		mcp.WithObject("projection",
			mcp.Description("Fields to include or exclude in the returned documents"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultFindLimit),
			mcp.Description("Maximum number of documents to return"),
		),
	)

	aggregateTool = mcp.NewTool(
		"aggregate",
		mcp.WithDescription("Run a read-only aggregation pipeline against a collection ($out and $merge stages are rejected)"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Name of the collection to aggregate"),
		),
		mcp.WithArray("pipeline",
			mcp.Required(),
			mcp.Description("Aggregation pipeline stages, in order"),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)

	countTool = mcp.NewTool(
		"count",
		mcp.WithDescription("Count the documents in a collection matching a filter"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Name of the collection to count"),
		),
		mcp.WithObject("filter",
			mcp.Description("MongoDB query filter document"),
		),
	)

	serverInfoTool = mcp.NewTool(
		"serverInfo",
		mcp.WithDescription("Return version and build information about the MongoDB server"),
	)

	listCollectionsTool = mcp.NewTool(
		"listCollections",
		mcp.WithDescription("List the collection names of the default database"),
	)
)
