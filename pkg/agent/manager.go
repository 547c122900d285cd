// Package agent forwards a routed chat request to the hosted agent service and
// returns the agent's reply text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Protocol-Lattice/chat-bridge/pkg/models"
	"github.com/Protocol-Lattice/chat-bridge/pkg/router"
)

// Replies used when the agent cannot produce one.
const (
	FallbackGreeting   = "Hello"
	DocumentsPrompt    = "Please review the attached documents."
	UploadFailedReply  = "I'm sorry, but I couldn't upload any of your documents. Please check the files and try again."
	RunFailedReply     = "I'm sorry, I wasn't able to process your request. Please try again."
	NoReplyReply       = "I've received your message, but I don't have a response yet. Please try again in a moment."
	errorReplyTemplate = "I apologize, but I encountered an error while processing your request: %v"
)

// releaseTimeout bounds cleanup, which runs even after the request context
// has ended.
const releaseTimeout = 30 * time.Second

// Manager runs one content-handling strategy per request.
type Manager struct {
	Service models.Service
	Logger  *slog.Logger
}

func NewManager(svc models.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{Service: svc, Logger: logger}
}

// errShortCircuit carries a user-facing reply that ends the pipeline early.
type errShortCircuit struct{ reply string }

func (e *errShortCircuit) Error() string { return e.reply }

// Respond always returns user-facing text. Remote failures are logged and
// turned into an apology; every resource created along the way is released
// before Respond returns.
func (m *Manager) Respond(ctx context.Context, message string, plan router.Plan) string {
	log := m.Logger.With("strategy", plan.Strategy.String())
	sess := &session{svc: m.Service, logger: log}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		sess.release(releaseCtx)
	}()

	reply, err := m.run(ctx, sess, message, plan)
	if err != nil {
		var short *errShortCircuit
		if errors.As(err, &short) {
			return short.reply
		}
		log.Error("agent request failed", "error", err)
		return fmt.Sprintf(errorReplyTemplate, err)
	}
	return reply
}

func (m *Manager) run(ctx context.Context, sess *session, message string, plan router.Plan) (string, error) {
	msg, err := compose(ctx, sess, message, plan)
	if err != nil {
		return "", err
	}

	var stores []string
	if sess.vectorStoreID != "" {
		stores = []string{sess.vectorStoreID}
	}
	threadID, err := m.Service.CreateThread(ctx, stores)
	if err != nil {
		return "", err
	}
	sess.logger.Debug("thread created", "thread_id", threadID)

	if err := m.Service.CreateMessage(ctx, threadID, msg); err != nil {
		return "", err
	}

	run, err := m.Service.RunAndWait(ctx, threadID)
	if err != nil {
		return "", err
	}
	if run.Failed() {
		sess.logger.Warn("agent run did not complete", "run_id", run.ID, "status", run.Status, "last_error", run.LastError)
		return RunFailedReply, nil
	}

	msgs, err := m.Service.ListMessages(ctx, threadID)
	if err != nil {
		return "", err
	}
	if reply, ok := latestReply(msgs, run.ID); ok {
		return reply, nil
	}
	return NoReplyReply, nil
}

// latestReply scans oldest first and keeps the last assistant message that
// belongs to runID and carries text.
func latestReply(msgs []models.ThreadMessage, runID string) (string, bool) {
	var reply string
	var found bool
	for _, msg := range msgs {
		if msg.Role != "assistant" || msg.RunID != runID || len(msg.Texts) == 0 {
			continue
		}
		reply = msg.Texts[len(msg.Texts)-1]
		found = true
	}
	return reply, found
}
