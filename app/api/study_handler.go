package api

import (
	"errors"
	"log"

	"notetutor/rag"
	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StudyHandler produces practice exams over a folder's notes.
type StudyHandler struct {
	noteStore store.NoteStorer
	generator rag.StudySetGenerator
}

func NewStudyHandler(noteStore store.NoteStorer, generator rag.StudySetGenerator) *StudyHandler {
	return &StudyHandler{
		noteStore: noteStore,
		generator: generator,
	}
}

func (h *StudyHandler) HandleStudy(c *fiber.Ctx) error {
	var params types.StudyParams
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

	set, err := h.generator.Generate(c.Context(), subject, notes)
	if errors.Is(err, rag.ErrMalformedOutput) {
		log.Printf("[STUDY] unparseable provider output: %v", err)
		return c.JSON(types.StudySet{
			Subject:              subject,
			MCQs:                 []types.MCQ{},
			ShortAnswerQuestions: []types.SAQ{},
			References:           []string{},
			Message:              rag.FallbackReply,
		})
	}
	if err != nil {
		return ErrUpstream(err)
	}

	return c.JSON(set)
}
