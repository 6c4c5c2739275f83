package main

import "fmt"

// Server identity constants
const (
	ServerName    = "mongo-readonly-mcp-server"
	ServerVersion = "1.0.0"
)

// serverBuildInfo is the subset of the buildInfo command output returned by
// the serverInfo tool.
type serverBuildInfo struct {
	Version           string   `bson:"version" json:"version"`
	GitVersion        string   `bson:"gitVersion" json:"gitVersion"`
	Modules           []string `bson:"modules" json:"modules"`
	Allocator         string   `bson:"allocator" json:"allocator"`
	JavascriptEngine  string   `bson:"javascriptEngine" json:"javascriptEngine"`
	SysInfo           string   `bson:"sysInfo" json:"sysInfo"`
	StorageEngines    []string `bson:"storageEngines" json:"storageEngines"`
	Debug             bool     `bson:"debug" json:"debug"`
	MaxBsonObjectSize int32    `bson:"maxBsonObjectSize" json:"maxBsonObjectSize"`
	OpenSSL           any      `bson:"openssl" json:"openssl,omitempty"`
	BuildEnvironment  any      `bson:"buildEnvironment" json:"buildEnvironment,omitempty"`
	Bits              int32    `bson:"bits" json:"bits"`
	OK                float64  `bson:"ok" json:"ok"`
	Status            struct{} `bson:"-" json:"status"`
}

// indexResourceURI builds the resource URI for a collection's index listing.
// Format: mongodb://dbname/collection/indexes
func indexResourceURI(database, collection string) string {
	return fmt.Sprintf("mongodb://%s/%s/indexes", database, collection)
}

// indexResourceURITemplate is the URI template matching index listings of
// any collection in the given database.
func indexResourceURITemplate(database string) string {
	return fmt.Sprintf("mongodb://%s/{collection}/indexes", database)
}
