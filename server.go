package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MongoMCPServer exposes the read-only tool surface over MCP.
type MongoMCPServer struct {
	db  *MongoDatabase
	mcp *server.MCPServer
}

// NewMongoMCPServer connects to the database behind uri and registers the
// tool and resource surface on a fresh MCP server.
func NewMongoMCPServer(ctx context.Context, uri string) (*MongoMCPServer, error) {
	db, err := NewMongoDatabase(ctx, uri)
	if err != nil {
		return nil, err
	}

	s := &MongoMCPServer{
		db: db,
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

func (s *MongoMCPServer) registerTools() {
	s.mcp.AddTool(findTool, s.handleFind)
	s.mcp.AddTool(aggregateTool, s.handleAggregate)
	s.mcp.AddTool(countTool, s.handleCount)
	s.mcp.AddTool(serverInfoTool, s.handleServerInfo)
	s.mcp.AddTool(listCollectionsTool, s.handleListCollections)
}

// registerResources publishes index listings for the default database's
// collections through a URI template. The collection is resolved from the
// URI on every read, so collections created or dropped after startup are
// picked up.
func (s *MongoMCPServer) registerResources() {
	template := mcp.NewResourceTemplate(
		indexResourceURITemplate(s.db.dbName),
		"Collection indexes",
		mcp.WithTemplateDescription("Index specifications of a collection in the default database"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcp.AddResourceTemplate(template, s.handleReadIndexes)
}

// Run serves MCP over stdio until the client disconnects or ctx is done.
func (s *MongoMCPServer) Run(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(os.Stderr, "[mongo-mcp] ", log.LstdFlags))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases the database client.
func (s *MongoMCPServer) Close() {
	s.db.Close()
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[mongo-mcp] "+format+"\n", args...)
}
