package bridge

import "github.com/Protocol-Lattice/chat-bridge/pkg/upload"

// Request is the single JSON document read from stdin.
type Request struct {
	Message   string           `json:"message"`
	Files     []upload.FileRef `json:"files"`
	SessionID string           `json:"sessionId"`
	Timestamp string           `json:"timestamp"`
}

// Response is the single JSON document written to stdout.
type Response struct {
	Response   string         `json:"response"`
	Confidence float64        `json:"confidence"`
	Intent     string         `json:"intent"`
	Entities   []string       `json:"entities"`
	Actions    []string       `json:"actions"`
	Metadata   map[string]any `json:"metadata"`
}

const (
	ActionProcessed      = "message_processed"
	ActionFilesAnalyzed  = "files_analyzed"
	ActionAgentResponded = "agent_responded"
	ActionErrorHandled   = "error_handled"
	ActionErrorLogged    = "error_logged"
)

const (
	invalidJSONReply    = "I apologize, but I encountered an error processing your request. Please try again."
	unexpectedErrReply  = "I apologize, but I encountered an unexpected error. Our team has been notified."
	invalidJSONMetadata = "Invalid JSON input"
)
