package ai

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/ayush/syncdraft/internal/httpx"
)

// GenerateRequest is the JSON body for POST /api/ai/generate.
type GenerateRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// GenerateResponse carries either the completion or an "Error: ..." message.
type GenerateResponse struct {
	Result string `json:"result"`
}

// Handler holds the AI assist handler.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Generate always answers 200. Failures come back as result text so the
// editor can show them inline.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := httpx.Decode(r, &req); err != nil {
		reply(w, "Error: invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		reply(w, "Error: No text provided")
		return
	}

	mode := ParseMode(req.Mode)
	result, err := h.service.Generate(r.Context(), mode, req.Text)
	if err != nil {
		slog.WarnContext(r.Context(), "ai generate failed", "mode", mode, "error", err)
		reply(w, "Error: "+describe(err))
		return
	}
	reply(w, result)
}

func reply(w http.ResponseWriter, result string) {
	httpx.WriteJSON(w, http.StatusOK, GenerateResponse{Result: result})
}

// describe turns a provider failure into the message shown to the writer.
func describe(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out. Please try again."
	case errors.Is(err, ErrBadResponse), errors.Is(err, ErrNotConfigured):
		return err.Error()
	case errors.As(err, &urlErr):
		return "Failed to connect to AI service - " + urlErr.Err.Error()
	default:
		return err.Error()
	}
}
