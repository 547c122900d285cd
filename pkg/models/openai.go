package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	listPageSize        = 100
	vectorStoreReady    = "completed"
	vectorStoreExpired  = "expired"
)

// OpenAIConfig configures an OpenAIService.
type OpenAIConfig struct {
	Endpoint     string // Assistants-compatible base URL, e.g. https://api.openai.com/v1
	APIKey       string
	AssistantID  string
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// OpenAIService talks to an Assistants v2 compatible agent platform.
type OpenAIService struct {
	Client       *openai.Client
	AssistantID  string
	PollInterval time.Duration

	baseURL string
	apiKey  string
	http    *http.Client
}

func NewOpenAIService(cfg OpenAIConfig) (*OpenAIService, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.AssistantID) == "" {
		return nil, ErrNotConfigured
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(cfg.Endpoint, "/")

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = httpClient

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &OpenAIService{
		Client:       openai.NewClientWithConfig(clientCfg),
		AssistantID:  cfg.AssistantID,
		PollInterval: interval,
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		http:         httpClient,
	}, nil
}

// UploadFile sends the file at path under name. The platform infers the file
// type from name, so it must be the original name rather than the storage
// path.
func (o *OpenAIService) UploadFile(ctx context.Context, path, name string, purpose Purpose) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	f, err := o.Client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   data,
		Purpose: openai.PurposeType(purpose),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return f.ID, nil
}

func (o *OpenAIService) DeleteFile(ctx context.Context, fileID string) error {
	if err := o.Client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

func (o *OpenAIService) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error) {
	vs, err := o.Client.CreateVectorStore(ctx, openai.VectorStoreRequest{
		Name:    name,
		FileIDs: fileIDs,
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}

	status := vs.Status
	err = o.poll(ctx, func() (bool, error) {
		if status == vectorStoreReady {
			return true, nil
		}
		if status == vectorStoreExpired {
			return false, &APIError{Op: "create vector store", Message: "vector store expired before indexing finished"}
		}
		cur, err := o.Client.RetrieveVectorStore(ctx, vs.ID)
		if err != nil {
			return false, fmt.Errorf("retrieve vector store %s: %w", vs.ID, err)
		}
		status = cur.Status
		return status == vectorStoreReady, nil
	})
	// The store exists remotely even when indexing failed; hand the id back so
	// the caller can release it.
	return vs.ID, err
}

func (o *OpenAIService) DeleteVectorStore(ctx context.Context, id string) error {
	if _, err := o.Client.DeleteVectorStore(ctx, id); err != nil {
		return fmt.Errorf("delete vector store %s: %w", id, err)
	}
	return nil
}

func (o *OpenAIService) CreateThread(ctx context.Context, vectorStoreIDs []string) (string, error) {
	req := openai.ThreadRequest{}
	if len(vectorStoreIDs) > 0 {
		req.ToolResources = &openai.ToolResourcesRequest{
			FileSearch: &openai.FileSearchToolResourcesRequest{VectorStoreIDs: vectorStoreIDs},
		}
	}
	th, err := o.Client.CreateThread(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return th.ID, nil
}

func (o *OpenAIService) CreateMessage(ctx context.Context, threadID string, msg Message) error {
	if msg.HasImages() {
		return o.createBlockMessage(ctx, threadID, msg)
	}

	atts := make([]openai.ThreadAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		tools := make([]openai.ThreadAttachmentTool, 0, len(a.Tools))
		for _, t := range a.Tools {
			tools = append(tools, openai.ThreadAttachmentTool{Type: t})
		}
		atts = append(atts, openai.ThreadAttachment{FileID: a.FileID, Tools: tools})
	}
	_, err := o.Client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:        "user",
		Content:     msg.Text(),
		Attachments: atts,
	})
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

type blockPayload struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ImageFile *imageFileField `json:"image_file,omitempty"`
}

type imageFileField struct {
	FileID string `json:"file_id"`
}

type blockMessageRequest struct {
	Role    string         `json:"role"`
	Content []blockPayload `json:"content"`
}

// createBlockMessage posts a message whose content is a list of blocks.
// go-openai's MessageRequest only carries string content, so this request is
// built by hand against the same base URL and credentials.
func (o *OpenAIService) createBlockMessage(ctx context.Context, threadID string, msg Message) error {
	body := blockMessageRequest{Role: "user", Content: make([]blockPayload, 0, len(msg.Blocks))}
	for _, b := range msg.Blocks {
		switch b.Type {
		case BlockText:
			body.Content = append(body.Content, blockPayload{Type: string(BlockText), Text: b.Text})
		case BlockImageFile:
			body.Content = append(body.Content, blockPayload{Type: string(BlockImageFile), ImageFile: &imageFileField{FileID: b.FileID}})
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/threads/%s/messages", o.baseURL, threadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Op: "create message", StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return "no error details"
}

func (o *OpenAIService) RunAndWait(ctx context.Context, threadID string) (Run, error) {
	run, err := o.Client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: o.AssistantID})
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	err = o.poll(ctx, func() (bool, error) {
		if terminal(string(run.Status)) {
			return true, nil
		}
		next, err := o.Client.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return false, fmt.Errorf("retrieve run %s: %w", run.ID, err)
		}
		run = next
		return terminal(string(run.Status)), nil
	})
	if err != nil {
		return Run{}, err
	}

	out := Run{ID: run.ID, Status: string(run.Status)}
	if run.LastError != nil {
		out.LastError = run.LastError.Message
	}
	return out, nil
}

func terminal(status string) bool {
	switch status {
	case RunCompleted, RunFailed, RunCancelled, RunExpired, RunIncomplete, "requires_action":
		return true
	}
	return false
}

func (o *OpenAIService) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	limit := listPageSize
	order := "asc"
	var after *string
	var out []ThreadMessage
	for {
		page, err := o.Client.ListMessage(ctx, threadID, &limit, &order, after, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		for _, m := range page.Messages {
			out = append(out, convertMessage(m))
		}
		if !page.HasMore || page.LastID == nil || len(page.Messages) == 0 {
			return out, nil
		}
		after = page.LastID
	}
}

func convertMessage(m openai.Message) ThreadMessage {
	tm := ThreadMessage{ID: m.ID, Role: m.Role}
	if m.RunID != nil {
		tm.RunID = *m.RunID
	}
	for _, c := range m.Content {
		if c.Text != nil {
			tm.Texts = append(tm.Texts, c.Text.Value)
		}
	}
	return tm
}

// poll calls check until it reports done, fails, or ctx ends. check runs once
// immediately.
func (o *OpenAIService) poll(ctx context.Context, check func() (bool, error)) error {
	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()
	for {
		done, err := check()
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ Service = (*OpenAIService)(nil)
