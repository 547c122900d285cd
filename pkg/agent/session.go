package agent

import (
	"context"
	"log/slog"

	"github.com/Protocol-Lattice/chat-bridge/pkg/models"
	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

// session tracks the remote resources one request creates.
type session struct {
	svc    models.Service
	logger *slog.Logger

	fileIDs       []string
	vectorStoreID string
}

// upload sends every ref and returns the ids of those that succeeded.
// Failures are logged and skipped.
func (s *session) upload(ctx context.Context, refs []upload.FileRef, purpose models.Purpose) []string {
	var ids []string
	for _, ref := range refs {
		id, err := s.svc.UploadFile(ctx, ref.Path, ref.OriginalName, purpose)
		if err != nil {
			s.logger.Warn("upload failed, skipping file", "name", ref.OriginalName, "error", err)
			continue
		}
		s.logger.Info("file uploaded", "name", ref.OriginalName, "file_id", id)
		s.fileIDs = append(s.fileIDs, id)
		ids = append(ids, id)
	}
	return ids
}

// release deletes the vector store and uploaded files. Failures are logged
// and never returned.
func (s *session) release(ctx context.Context) {
	if s.vectorStoreID != "" {
		if err := s.svc.DeleteVectorStore(ctx, s.vectorStoreID); err != nil {
			s.logger.Warn("vector store cleanup failed", "vector_store_id", s.vectorStoreID, "error", err)
		} else {
			s.logger.Info("vector store deleted", "vector_store_id", s.vectorStoreID)
		}
	}
	for _, id := range s.fileIDs {
		if err := s.svc.DeleteFile(ctx, id); err != nil {
			s.logger.Warn("file cleanup failed", "file_id", id, "error", err)
			continue
		}
		s.logger.Info("file deleted", "file_id", id)
	}
}
