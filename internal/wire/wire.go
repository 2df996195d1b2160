// Package wire defines the JSON envelope shared by the record API server
// and the remote store client.
package wire

import "encoding/json"

// Tables served under BasePath.
const (
	BasePath        = "/api/v1"
	TableTasks      = "tasks"
	TableCategories = "categories"
	TableTemplates  = "templates"
)

// Error codes carried in Envelope.Code.
const (
	CodeNotFound        = "not_found"
	CodeUnknownCategory = "unknown_category"
	CodeInvalid         = "invalid"
	CodeUnauthorized    = "unauthorized"
	CodeInternal        = "internal"
)

// Envelope is the body of every record API response. Reads carry Data;
// writes carry one Result per affected record.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Results []Result        `json:"results,omitempty"`
}

// Result reports the outcome of a write on a single record.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TablePath returns BasePath + "/" + table.
func TablePath(table string) string {
	return BasePath + "/" + table
}
