package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Purpose tells the agent service what an uploaded file will be used for.
type Purpose string

const (
	PurposeAssistants Purpose = "assistants"
	PurposeVision     Purpose = "vision"
)

type BlockType string

const (
	BlockText      BlockType = "text"
	BlockImageFile BlockType = "image_file"
)

// ContentBlock is one segment of a multi-block user message.
type ContentBlock struct {
	Type   BlockType
	Text   string
	FileID string
}

func TextBlock(text string) ContentBlock { return ContentBlock{Type: BlockText, Text: text} }

func ImageBlock(fileID string) ContentBlock {
	return ContentBlock{Type: BlockImageFile, FileID: fileID}
}

// Attachment references an uploaded file and the tools allowed to read it.
type Attachment struct {
	FileID string
	Tools  []string
}

const ToolFileSearch = "file_search"

// Message is a user message to post on a thread.
type Message struct {
	Blocks      []ContentBlock
	Attachments []Attachment
}

// HasImages reports whether the message needs multi-block content.
func (m Message) HasImages() bool {
	for _, b := range m.Blocks {
		if b.Type == BlockImageFile {
			return true
		}
	}
	return false
}

// Text joins the text blocks of m.
func (m Message) Text() string {
	parts := make([]string, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		if b.Type == BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

const (
	RunCompleted  = "completed"
	RunFailed     = "failed"
	RunCancelled  = "cancelled"
	RunExpired    = "expired"
	RunIncomplete = "incomplete"
)

// Run is the terminal state of an agent run.
type Run struct {
	ID        string
	Status    string
	LastError string
}

// Failed reports whether the run ended without usable output.
func (r Run) Failed() bool {
	switch r.Status {
	case RunFailed, RunCancelled, RunExpired:
		return true
	}
	return false
}

// ThreadMessage is a message read back from a thread.
type ThreadMessage struct {
	ID    string
	Role  string
	RunID string
	Texts []string
}

// Service is the hosted conversational agent platform. Implementations own
// the wire protocol; callers own resource lifecycle.
type Service interface {
	UploadFile(ctx context.Context, path, name string, purpose Purpose) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
	// CreateVectorStore returns once the store has finished indexing.
	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error)
	DeleteVectorStore(ctx context.Context, id string) error
	CreateThread(ctx context.Context, vectorStoreIDs []string) (string, error)
	CreateMessage(ctx context.Context, threadID string, msg Message) error
	// RunAndWait starts a run of the configured agent and blocks until it
	// reaches a terminal state.
	RunAndWait(ctx context.Context, threadID string) (Run, error)
	// ListMessages returns every message on the thread, oldest first.
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)
}

var ErrNotConfigured = errors.New("agent service not configured")

// APIError is returned for non-2xx responses the service reports directly.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}
