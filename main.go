package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	applyEnvOverrides()

	uri, err := resolveURI(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: mongo-mcp-server <uri>")
		fmt.Fprintln(os.Stderr, "Example: mongo-mcp-server 'mongodb://localhost:27017/mydb'")
		logError("%v", err)
		os.Exit(1)
	}

	// Create context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logError("Received shutdown signal")
		cancel()
	}()

	server, err := NewMongoMCPServer(ctx, uri)
	if err != nil {
		logError("Failed to create server: %v", err)
		os.Exit(1)
	}
	defer server.Close()

	logError("MongoDB MCP Server started (read-only mode)")

	if err := server.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logError("Server shutdown gracefully")
		} else {
			logError("Server error: %v", err)
			os.Exit(1)
		}
	}
}
