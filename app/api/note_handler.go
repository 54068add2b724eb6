package api

import (
	"errors"
	"io"
	"log"

	"notetutor/loader"
	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NoteHandler struct {
	noteStore store.NoteStorer
	extractor *loader.Extractor
}

func NewNoteHandler(noteStore store.NoteStorer, extractor *loader.Extractor) *NoteHandler {
	return &NoteHandler{
		noteStore: noteStore,
		extractor: extractor,
	}
}

func (h *NoteHandler) HandleCreateNote(c *fiber.Ctx) error {
	folderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.NoteParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	note, err := h.noteStore.CreateNote(c.Context(), types.Note{
		UserID:   userFrom(c),
		FolderID: folderID,
		Title:    params.Title,
		Content:  params.Content,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(c.Params("id"), "folder")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *NoteHandler) HandleListNotes(c *fiber.Ctx) error {
	folderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	notes, err := h.noteStore.FetchNotesByFolder(c.Context(), userFrom(c), folderID)
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (h *NoteHandler) HandleUpdateNote(c *fiber.Ctx) error {
	noteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.NoteParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	note, err := h.noteStore.UpdateNote(c.Context(), types.Note{
		ID:      noteID,
		UserID:  userFrom(c),
		Title:   params.Title,
		Content: params.Content,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(c.Params("id"), "note")
	}
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (h *NoteHandler) HandleDeleteNote(c *fiber.Ctx) error {
	noteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	err = h.noteStore.DeleteNote(c.Context(), userFrom(c), noteID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(c.Params("id"), "note")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": noteID})
}

// HandleUpload accepts a .txt/.md/.pdf file and stores its text as a new
// note in the folder.
func (h *NoteHandler) HandleUpload(c *fiber.Ctx) error {
	folderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	content, err := h.extractor.ExtractText(c.Context(), fileHeader.Filename, data)
	if err != nil {
		log.Printf("[UPLOAD] extraction failed for %s: %v", fileHeader.Filename, err)
		return NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	note, err := h.noteStore.CreateNote(c.Context(), types.Note{
		UserID:   userFrom(c),
		FolderID: folderID,
		Title:    loader.TitleFromFilename(fileHeader.Filename),
		Content:  content,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(c.Params("id"), "folder")
	}
	if err != nil {
		return err
	}

	log.Printf("[UPLOAD] file %s stored as note %s", fileHeader.Filename, note.ID)
	return c.Status(fiber.StatusCreated).JSON(note)
}
