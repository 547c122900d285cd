// Package bridge turns one widget request into exactly one JSON response.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Protocol-Lattice/chat-bridge/pkg/intent"
	"github.com/Protocol-Lattice/chat-bridge/pkg/models"
	"github.com/Protocol-Lattice/chat-bridge/pkg/router"
	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

// Responder produces the reply text for a routed request. It must not fail;
// remote errors are expected to come back as user-facing text.
type Responder interface {
	Respond(ctx context.Context, message string, plan router.Plan) string
}

// Processor wires the classifier, inspector, router and responder together.
type Processor struct {
	Classifier intent.Classifier
	Inspector  upload.Inspector
	Agent      Responder // nil selects canned per-intent replies
	Logger     *slog.Logger
	RequestID  string
	Now        func() time.Time
}

// ErrNullRequest is reported when stdin holds the JSON literal null. It is
// valid JSON, so it is not an invalid-input error, but there is no request
// to process.
var ErrNullRequest = errors.New("request is null")

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Process reads one request from in and writes one response to out. It
// returns the process exit code.
func (p *Processor) Process(ctx context.Context, in io.Reader, out io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			p.logger().Error("request processing panicked", "error", err)
			code = WriteError(out, err, p.now())
		}
	}()

	data, err := io.ReadAll(in)
	if err != nil {
		p.logger().Error("read request", "error", err)
		return WriteError(out, fmt.Errorf("read request: %w", err), p.now())
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		p.logger().Error("decode request", "error", err)
		return writeInvalidJSON(out, p.now())
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.logger().Error("decode request", "error", ErrNullRequest)
		return WriteError(out, ErrNullRequest, p.now())
	}

	body, err := render(p.Handle(ctx, req), true)
	if err != nil {
		p.logger().Error("encode response", "error", err)
		return WriteError(out, fmt.Errorf("encode response: %w", err), p.now())
	}
	if _, err := out.Write(body); err != nil {
		p.logger().Error("write response", "error", err)
		return 1
	}
	return 0
}

// Handle builds the success Response for a decoded request.
func (p *Processor) Handle(ctx context.Context, req Request) Response {
	reqID := p.RequestID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := p.logger().With("session_id", req.SessionID)
	log.Info("request received", "message_length", utf8.RuneCountInString(req.Message), "files", len(req.Files))

	res := p.Classifier.ForMessage(req.Message)

	inspector := p.Inspector
	if inspector.Logger == nil {
		inspector.Logger = log
	}
	analyses := inspector.Inspect(req.Files)

	plan := router.Route(req.Files)
	log.Info("request routed", "intent", res.Intent, "strategy", plan.Strategy.String(), "unsupported", len(plan.Unsupported))

	actions := []string{ActionProcessed}
	if len(req.Files) > 0 {
		actions = append(actions, ActionFilesAnalyzed)
	}

	var reply string
	if p.Agent != nil {
		reply = p.Agent.Respond(ctx, req.Message, plan)
		actions = append(actions, ActionAgentResponded)
	} else {
		reply = models.Canned{}.Reply(res, len(req.Files))
	}

	types := make([]string, 0, len(analyses))
	for _, a := range analyses {
		types = append(types, a.Type)
	}
	unsupported := plan.Unsupported
	if unsupported == nil {
		unsupported = []string{}
	}

	entities := res.Entities
	if entities == nil {
		entities = []string{}
	}
	return Response{
		Response:   reply,
		Confidence: res.Confidence,
		Intent:     res.Intent,
		Entities:   entities,
		Actions:    actions,
		Metadata: map[string]any{
			"session_id":        req.SessionID,
			"timestamp":         req.Timestamp,
			"processing_time":   p.now().Format(time.RFC3339Nano),
			"file_count":        len(req.Files),
			"file_types":        types,
			"files_processed":   analyses,
			"message_length":    utf8.RuneCountInString(req.Message),
			"strategy":          plan.Strategy.String(),
			"unsupported_files": unsupported,
			"request_id":        reqID,
		},
	}
}

// WriteError writes the fixed unexpected-error response and returns the exit
// code to use.
func WriteError(out io.Writer, err error, now time.Time) int {
	resp := Response{
		Response:   unexpectedErrReply,
		Confidence: 0,
		Intent:     intent.Error,
		Entities:   []string{},
		Actions:    []string{ActionErrorLogged},
		Metadata: map[string]any{
			"error":      err.Error(),
			"error_type": fmt.Sprintf("%T", err),
			"timestamp":  now.Format(time.RFC3339Nano),
		},
	}
	writeFixed(out, resp)
	return 1
}

func writeInvalidJSON(out io.Writer, now time.Time) int {
	resp := Response{
		Response:   invalidJSONReply,
		Confidence: 0,
		Intent:     intent.Error,
		Entities:   []string{},
		Actions:    []string{ActionErrorHandled},
		Metadata: map[string]any{
			"error":     invalidJSONMetadata,
			"timestamp": now.Format(time.RFC3339Nano),
		},
	}
	writeFixed(out, resp)
	return 1
}

func render(resp Response, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFixed(out io.Writer, resp Response) {
	// Fixed error responses only hold strings, so rendering cannot fail.
	body, _ := render(resp, false)
	_, _ = out.Write(body)
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
