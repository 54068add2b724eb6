package api

import (
	"errors"
	"log"

	"notetutor/model"
	"notetutor/rag"
	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProviderDownReply is the canned chat answer when no generative provider
// is configured. It is a normal reply, not an error.
const ProviderDownReply = "The AI tutor is not configured on this server, so questions about your notes cannot be answered right now. Your notes are still available for reading and editing."

// ChatHandler runs the retrieval-and-grounding pipeline for one chat turn.
type ChatHandler struct {
	noteStore store.NoteStorer
	provider  model.TextProvider
	policy    rag.ConfidencePolicy
	chunkSize int
}

func NewChatHandler(noteStore store.NoteStorer, provider model.TextProvider, chunkSize int) *ChatHandler {
	return &ChatHandler{
		noteStore: noteStore,
		provider:  provider,
		policy:    rag.StrictPolicy,
		chunkSize: chunkSize,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	folderID, err := uuid.Parse(params.FolderID)
	if err != nil {
		return ErrInvalidID()
	}

	userID := userFrom(c)
	subject := params.FolderName
	folder, err := h.noteStore.GetFolder(c.Context(), userID, folderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(params.FolderID, "folder")
	}
	if err != nil {
		return err
	}
	if subject == "" {
		subject = folder.Name
	}

	notes, err := h.noteStore.FetchNotesByFolder(c.Context(), userID, folderID)
	if err != nil {
		return err
	}

	if h.provider == nil {
		return c.JSON(types.ChatResponse{Reply: ProviderDownReply})
	}

	scored := rag.Retrieve(params.Message, notes, h.chunkSize)
	topScore := 0
	if len(scored) > 0 {
		topScore = scored[0].Score
	}
	derived := h.policy.Label(topScore)
	log.Printf("[CHAT] retrieved %d chunks for subject %q, top score %d (%s)",
		len(scored), subject, topScore, derived)

	history := rag.TrimHistory(params.ContextNotes, rag.HistoryWindow)
	system := rag.BuildChatInstruction(subject, scored, history)
	rag.LogPromptSize("CHAT", system)

	messages := make([]model.Message, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, model.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, model.Message{Role: types.RoleUser, Content: params.Message})

	raw, err := h.provider.Complete(c.Context(), system, messages)
	if err != nil {
		return ErrUpstream(err)
	}

	ans, err := rag.ParseGroundedAnswer(raw)
	if err != nil {
		// Malformed model output degrades to a reply, never a 5xx.
		log.Printf("[CHAT] unparseable provider output: %v", err)
		return c.JSON(types.ChatResponse{Reply: rag.FallbackReply})
	}
	if ans.Confidence == "" {
		ans.Confidence = derived
	}

	return c.JSON(types.ChatResponse{Reply: rag.RenderReply(ans, subject)})
}
