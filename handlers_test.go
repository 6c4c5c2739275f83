package main

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// A server with an unconnected database: any handler that reaches the driver
// panics, so these tests prove rejection happens before dispatch.
func unconnectedServer() *MongoMCPServer {
	return &MongoMCPServer{db: &MongoDatabase{dbName: "testdb"}}
}

func TestHandleFind_RejectsJavaScriptFilter(t *testing.T) {
	srv := unconnectedServer()

	res, err := srv.handleFind(context.Background(), callToolRequest("find", map[string]any{
		"collection": "users",
		"filter":     map[string]any{"$where": "this.a > 1"},
	}))
	if err != nil {
		t.Fatalf("handleFind returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("Expected $where filter to be rejected")
	}
}

func TestHandleFind_RejectsJavaScriptProjection(t *testing.T) {
	srv := unconnectedServer()

	res, err := srv.handleFind(context.Background(), callToolRequest("find", map[string]any{
		"collection": "users",
		"projection": map[string]any{
			"x": map[string]any{"$function": map[string]any{"body": "x", "args": []any{}, "lang": "js"}},
		},
	}))
	if err != nil {
		t.Fatalf("handleFind returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("Expected $function projection to be rejected")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	if !strings.Contains(text.Text, "Projection rejected") {
		t.Errorf("Expected projection rejection message, got %q", text.Text)
	}
}

func TestGuardTool(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Name = "insert"
	if res := guardTool(req); res == nil || !res.IsError {
		t.Error("Expected non-allow-listed operation to be rejected")
	}

	req.Params.Name = "find"
	if res := guardTool(req); res != nil {
		t.Errorf("Expected allow-listed operation to pass, got %+v", res)
	}
}

func TestObjectArg(t *testing.T) {
	args := map[string]any{
		"filter":  map[string]any{"status": "active"},
		"badType": "not an object",
		"null":    nil,
	}

	obj, err := objectArg(args, "filter")
	if err != nil {
		t.Fatalf("objectArg returned error: %v", err)
	}
	if obj["status"] != "active" {
		t.Errorf("Expected filter contents, got %v", obj)
	}

	obj, err = objectArg(args, "missing")
	if err != nil || obj != nil {
		t.Errorf("Expected nil map for missing key, got %v, %v", obj, err)
	}

	obj, err = objectArg(args, "null")
	if err != nil || obj != nil {
		t.Errorf("Expected nil map for null value, got %v, %v", obj, err)
	}

	if _, err = objectArg(args, "badType"); err == nil {
		t.Error("Expected error for non-object value")
	}
}

func TestArrayArg(t *testing.T) {
	args := map[string]any{
		"pipeline": []any{map[string]any{"$match": map[string]any{}}},
		"badType":  "not an array",
	}

	arr, err := arrayArg(args, "pipeline")
	if err != nil {
		t.Fatalf("arrayArg returned error: %v", err)
	}
	if len(arr) != 1 {
		t.Errorf("Expected one pipeline stage, got %d", len(arr))
	}

	if _, err = arrayArg(args, "missing"); err == nil {
		t.Error("Expected error for missing required array")
	}
	if _, err = arrayArg(args, "badType"); err == nil {
		t.Error("Expected error for non-array value")
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]any{
		"limit":   float64(25), // JSON numbers decode as float64
		"badType": "not a number",
	}

	n, err := intArg(args, "limit", 100)
	if err != nil {
		t.Fatalf("intArg returned error: %v", err)
	}
	if n != 25 {
		t.Errorf("Expected 25, got %d", n)
	}

	n, err = intArg(args, "missing", 100)
	if err != nil || n != 100 {
		t.Errorf("Expected fallback 100 for missing key, got %d, %v", n, err)
	}

	if _, err = intArg(args, "badType", 100); err == nil {
		t.Error("Expected error for non-numeric value")
	}

	args["fractional"] = float64(10.9)
	if _, err = intArg(args, "fractional", 100); err == nil {
		t.Error("Expected error for fractional value")
	}
}

func TestCollectionFromIndexURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"mongodb://shop/orders/indexes", "orders", false},
		{"mongodb://shop/orders.archive/indexes", "orders.archive", false},
		{"mysql://shop/orders/indexes", "", true},     // wrong scheme
		{"mongodb://other/orders/indexes", "", true},  // wrong database
		{"mongodb://shop/orders/schema", "", true},    // wrong suffix
		{"mongodb://shop/orders", "", true},           // missing suffix
		{"mongodb://shop//indexes", "", true},         // empty collection
		{"mongodb://shop/foo$bar/indexes", "", true},  // invalid collection
	}

	for _, tc := range tests {
		t.Run(tc.uri, func(t *testing.T) {
			got, err := collectionFromIndexURI("shop", tc.uri)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got collection %q", tc.uri, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("collectionFromIndexURI(%q) returned error: %v", tc.uri, err)
			}
			if got != tc.want {
				t.Errorf("collectionFromIndexURI(%q) = %q, want %q", tc.uri, got, tc.want)
			}
		})
	}
}

func TestToolSchemas(t *testing.T) {
	tests := []struct {
		toolName string
		required []string
	}{
		{findTool.Name, []string{"collection"}},
		{aggregateTool.Name, []string{"collection", "pipeline"}},
		{countTool.Name, []string{"collection"}},
		{serverInfoTool.Name, nil},
		{listCollectionsTool.Name, nil},
	}

	byName := map[string][]string{
		findTool.Name:            findTool.InputSchema.Required,
		aggregateTool.Name:       aggregateTool.InputSchema.Required,
		countTool.Name:           countTool.InputSchema.Required,
		serverInfoTool.Name:      serverInfoTool.InputSchema.Required,
		listCollectionsTool.Name: listCollectionsTool.InputSchema.Required,
	}

	for _, tc := range tests {
		t.Run(tc.toolName, func(t *testing.T) {
			got := byName[tc.toolName]
			if len(got) != len(tc.required) {
				t.Fatalf("Expected required params %v, got %v", tc.required, got)
			}
			for _, want := range tc.required {
				found := false
				for _, param := range got {
					if param == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected %q in required params, got %v", want, got)
				}
			}
		})
	}
}

func TestIndexResourceURI(t *testing.T) {
	uri := indexResourceURI("shop", "orders")
	if uri != "mongodb://shop/orders/indexes" {
		t.Errorf("Unexpected resource URI: %q", uri)
	}
	if !strings.HasPrefix(uri, "mongodb://") {
		t.Errorf("Resource URI must use the mongodb scheme: %q", uri)
	}

	// Concrete URIs must parse back through the template's parser.
	if got, err := collectionFromIndexURI("shop", uri); err != nil || got != "orders" {
		t.Errorf("Round trip through collectionFromIndexURI failed: %q, %v", got, err)
	}

	template := indexResourceURITemplate("shop")
	if template != "mongodb://shop/{collection}/indexes" {
		t.Errorf("Unexpected resource URI template: %q", template)
	}
}
