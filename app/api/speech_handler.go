package api

import (
	"errors"

	"notetutor/model"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
)

// SpeechHandler passes audio and text through to the speech provider. No
// retrieval or grounding logic lives here.
type SpeechHandler struct {
	speech *model.SpeechClient
}

func NewSpeechHandler(speech *model.SpeechClient) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

func (h *SpeechHandler) HandleTranscribe(c *fiber.Ctx) error {
	audio := c.Body()
	if len(audio) == 0 {
		return ErrBadRequest()
	}

	text, err := h.speech.Transcribe(c.Context(), audio)
	if errors.Is(err, model.ErrNotConfigured) {
		return ErrProviderUnavailable("speech-to-text")
	}
	if err != nil {
		return ErrUpstream(err)
	}
	return c.JSON(fiber.Map{"text": text})
}

func (h *SpeechHandler) HandleSynthesize(c *fiber.Ctx) error {
	var params types.SynthesizeParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	audio, err := h.speech.Synthesize(c.Context(), params.Text)
	if errors.Is(err, model.ErrNotConfigured) {
		return ErrProviderUnavailable("text-to-speech")
	}
	if err != nil {
		return ErrUpstream(err)
	}

	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.Send(audio)
}
