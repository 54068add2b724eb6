package api

import (
	"errors"

	"notetutor/store"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FolderHandler struct {
	noteStore store.NoteStorer
}

func NewFolderHandler(noteStore store.NoteStorer) *FolderHandler {
	return &FolderHandler{noteStore: noteStore}
}

func (h *FolderHandler) HandleCreateFolder(c *fiber.Ctx) error {
	var params types.FolderParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	folder, err := h.noteStore.CreateFolder(c.Context(), types.Folder{
		UserID: userFrom(c),
		Name:   params.Name,
	})
	if errors.Is(err, store.ErrFolderLimit) {
		return ErrFolderLimit()
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(folder)
}

func (h *FolderHandler) HandleListFolders(c *fiber.Ctx) error {
	folders, err := h.noteStore.ListFolders(c.Context(), userFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(folders)
}

func (h *FolderHandler) HandleDeleteFolder(c *fiber.Ctx) error {
	folderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	// Notes in the folder are removed by the cascade.
	err = h.noteStore.DeleteFolder(c.Context(), userFrom(c), folderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(c.Params("id"), "folder")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": folderID})
}
