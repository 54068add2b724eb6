package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// ChatParams is the chat request body. Message and FolderID are required;
// ContextNotes carries the recent conversation turns supplied by the client.
type ChatParams struct {
	Message      string             `json:"message" validate:"required"`
	FolderID     string             `json:"folder_id" validate:"required"`
	FolderName   string             `json:"folder_name"`
	ContextNotes []ConversationTurn `json:"context_notes"`
}

// StudyParams requests a practice exam over one folder.
type StudyParams struct {
	FolderID   string `json:"folder_id" validate:"required"`
	FolderName string `json:"folder_name"`
}

// GradeParams carries one answer to grade. All three fields are required;
// a missing field is a client error, not a grading outcome.
type GradeParams struct {
	Question    string `json:"question" validate:"required"`
	UserAnswer  string `json:"user_answer" validate:"required"`
	ModelAnswer string `json:"model_answer" validate:"required"`
}

// FolderParams creates a subject folder.
type FolderParams struct {
	Name string `json:"name" validate:"required"`
}

// NoteParams creates or updates a note.
type NoteParams struct {
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

// SynthesizeParams carries text for the text-to-speech pass-through.
type SynthesizeParams struct {
	Text string `json:"text" validate:"required"`
}

func (params *ChatParams) Validate() map[string]string       { return validateStruct(params) }
func (params *StudyParams) Validate() map[string]string      { return validateStruct(params) }
func (params *GradeParams) Validate() map[string]string      { return validateStruct(params) }
func (params *FolderParams) Validate() map[string]string     { return validateStruct(params) }
func (params *NoteParams) Validate() map[string]string       { return validateStruct(params) }
func (params *SynthesizeParams) Validate() map[string]string { return validateStruct(params) }

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
