package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/prompt2json/internal/convert"
)

// Converter is satisfied by *convert.Converter.
type Converter interface {
	Convert(ctx context.Context, prompt string) (*convert.Result, error)
}

// ConvertHandler serves the public conversion endpoint.
type ConvertHandler struct {
	converter Converter
	logger    *slog.Logger
}

func NewConvertHandler(converter Converter, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{converter: converter, logger: logger}
}

type convertRequest struct {
	Prompt json.RawMessage `json:"prompt"`
}

type ConvertResponse struct {
	JSONOutput string `json:"jsonOutput"`
	Warning    string `json:"warning,omitempty"`
}

// HandleConvert turns {"prompt": "..."} into {"jsonOutput": "..."}.
//
// HTTP: POST /convert
//
// An AI failure is still a 200: the body carries the fallback document
// and a warning. Only a bad prompt is an error.
func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	prompt, ok := parsePrompt(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: convert.ErrPromptRequired})
		return
	}

	res, err := h.converter.Convert(r.Context(), prompt)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("conversion failed", slog.String("error", err.Error()))
		}
		writeError(w, err, "Failed to convert prompt")
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		JSONOutput: res.JSON,
		Warning:    res.Warning,
	})
}

// parsePrompt accepts only a JSON string. Numbers, objects, null and a
// missing field are all rejected, as is a malformed body.
func parsePrompt(r *http.Request) (string, bool) {
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", false
	}
	if len(req.Prompt) == 0 {
		return "", false
	}

	var prompt string
	if err := json.Unmarshal(req.Prompt, &prompt); err != nil {
		return "", false
	}
	return prompt, true
}

var _ Converter = (*convert.Converter)(nil)
