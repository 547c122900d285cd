package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Protocol-Lattice/chat-bridge/pkg/models"
	"github.com/Protocol-Lattice/chat-bridge/pkg/router"
)

// composer builds the user message for one strategy, uploading whatever the
// strategy needs through sess.
type composer func(ctx context.Context, sess *session, message string, plan router.Plan) (models.Message, error)

var composers = map[router.Strategy]composer{
	router.TextOnly:      composeText,
	router.ImagesOnly:    composeImages,
	router.DocumentsOnly: composeDocuments,
	router.Mixed:         composeDocuments,
}

func compose(ctx context.Context, sess *session, message string, plan router.Plan) (models.Message, error) {
	c, ok := composers[plan.Strategy]
	if !ok {
		return models.Message{}, fmt.Errorf("unknown strategy %s", plan.Strategy)
	}
	return c(ctx, sess, message, plan)
}

func composeText(_ context.Context, _ *session, message string, plan router.Plan) (models.Message, error) {
	text := message
	if text == "" {
		text = FallbackGreeting
	}
	text = withNote(text, plan.UnsupportedNote())
	return models.Message{Blocks: []models.ContentBlock{models.TextBlock(text)}}, nil
}

func composeImages(ctx context.Context, sess *session, message string, plan router.Plan) (models.Message, error) {
	ids := sess.upload(ctx, plan.Images, models.PurposeVision)

	note := plan.UnsupportedNote()
	var blocks []models.ContentBlock
	switch {
	case message != "":
		blocks = append(blocks, models.TextBlock(withNote(message, note)))
	case note != "":
		blocks = append(blocks, models.TextBlock(note))
	}
	for _, id := range ids {
		blocks = append(blocks, models.ImageBlock(id))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, models.TextBlock(FallbackGreeting))
	}
	return models.Message{Blocks: blocks}, nil
}

// composeDocuments serves both the documents-only and mixed strategies. In
// the mixed case images are only named in the text, never uploaded.
func composeDocuments(ctx context.Context, sess *session, message string, plan router.Plan) (models.Message, error) {
	ids := sess.upload(ctx, plan.Documents, models.PurposeAssistants)
	if len(ids) == 0 {
		return models.Message{}, &errShortCircuit{reply: UploadFailedReply}
	}

	storeID, err := sess.svc.CreateVectorStore(ctx, "chat-widget-documents", ids)
	if storeID != "" {
		sess.vectorStoreID = storeID
	}
	if err != nil {
		return models.Message{}, err
	}
	sess.logger.Info("vector store ready", "vector_store_id", storeID, "files", len(ids))

	text := message
	if text == "" {
		text = DocumentsPrompt
	}
	if plan.Strategy == router.Mixed {
		text = withNote(text, imageNote(plan.ImageNames()))
	}
	text = withNote(text, plan.UnsupportedNote())

	atts := make([]models.Attachment, 0, len(ids))
	for _, id := range ids {
		atts = append(atts, models.Attachment{FileID: id, Tools: []string{models.ToolFileSearch}})
	}
	return models.Message{
		Blocks:      []models.ContentBlock{models.TextBlock(text)},
		Attachments: atts,
	}, nil
}

func imageNote(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Note: I also shared these images: %s. Images are not analysed when documents are attached.",
		strings.Join(names, ", "))
}

func withNote(text, note string) string {
	if note == "" {
		return text
	}
	return text + "\n\n" + note
}
