package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/obiajulu/shortcode/internal/errx"
	"github.com/obiajulu/shortcode/internal/httpx"
)

// HTTPCreateLinkRequest is the JSON body for creating a link.
type HTTPCreateLinkRequest struct {
	Target string `json:"target"`
	Code   string `json:"code,omitempty"`
}

// LinkResponse is the JSON shape of a link.
type LinkResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Target      string  `json:"target"`
	ShortURL    string  `json:"short_url"`
	Clicks      int64   `json:"clicks"`
	CreatedAt   string  `json:"created_at"`
	LastClicked *string `json:"last_clicked"`
}

// PreviewResponse is the JSON shape of the preview endpoint: the subset of
// a link a visitor sees before following it.
type PreviewResponse struct {
	Code        string  `json:"code"`
	Target      string  `json:"target"`
	Clicks      int64   `json:"clicks"`
	LastClicked *string `json:"last_clicked"`
}

// Handler provides the HTTP handlers for the link service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // base for constructing short URLs, e.g. "https://sh.ort"
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: cfg.BaseURL,
	}
}

func (h *Handler) toLinkResponse(link Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID.String(),
		Code:        link.Code,
		Target:      link.Target,
		ShortURL:    fmt.Sprintf("%s/r/%s", h.baseURL, link.Code),
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
		LastClicked: formatTimePtr(link.LastClicked),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	if req.Target == "" {
		logger.WarnContext(ctx, "request missing target")
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "target is required", nil)
		return
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		Target:     req.Target,
		CustomCode: req.Code,
	})
	if err != nil {
		h.handleCreateError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"code", link.Code,
		"custom_code", req.Code != "",
	)

	httpx.WriteJSON(w, http.StatusCreated, h.toLinkResponse(link))
}

// ListLinks handles GET /links/all.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	all, err := h.service.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list links", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to list links at this time", nil)
		return
	}

	out := make([]LinkResponse, 0, len(all))
	for _, link := range all {
		out = append(out, h.toLinkResponse(link))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// GetLink handles GET /links/{code}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, ok := h.pathCode(w, r)
	if !ok {
		return
	}

	link, err := h.service.GetByCode(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, w, err, code)
		return
	}

	logger.InfoContext(ctx, "link fetched", "code", link.Code)

	httpx.WriteJSON(w, http.StatusOK, h.toLinkResponse(link))
}

// PreviewLink handles GET /links/{code}/preview. It never touches the
// click counter.
func (h *Handler) PreviewLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code, ok := h.pathCode(w, r)
	if !ok {
		return
	}

	link, err := h.service.GetByCode(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, w, err, code)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, PreviewResponse{
		Code:        link.Code,
		Target:      link.Target,
		Clicks:      link.Clicks,
		LastClicked: formatTimePtr(link.LastClicked),
	})
}

// ClickLink handles POST and GET /links/{code}/click: increments the
// counter and returns the updated link.
func (h *Handler) ClickLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, ok := h.pathCode(w, r)
	if !ok {
		return
	}

	link, err := h.service.RecordClick(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, w, err, code)
		return
	}

	logger.InfoContext(ctx, "click recorded",
		"code", link.Code,
		"clicks", link.Clicks,
	)

	httpx.WriteJSON(w, http.StatusOK, h.toLinkResponse(link))
}

// DeleteLink handles DELETE /links/{code}. Deletion is idempotent, so the
// response is success whether or not the code existed.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, ok := h.pathCode(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, code); err != nil {
		logger.ErrorContext(ctx, "failed to delete link",
			"error", err.Error(),
			"code", code,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to delete this link at this time", nil)
		return
	}

	logger.InfoContext(ctx, "link deleted", "code", code)

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Redirect handles GET /r/{code}: a 302 to the target. This path does not
// record a click; only the explicit click endpoints do.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, ok := h.pathCode(w, r)
	if !ok {
		return
	}

	target, err := h.service.RedirectTarget(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, w, err, code)
		return
	}

	logger.InfoContext(ctx, "redirecting",
		"code", code,
		"target", target,
		"referer", r.Referer(),
	)

	http.Redirect(w, r, target, http.StatusFound)
}

// pathCode pulls the {code} path segment, writing a 400 when it is
// missing or longer than any code could be.
func (h *Handler) pathCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := r.PathValue("code")
	if err := validatePathCode(code); err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "invalid code in path",
			"code", code,
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return "", false
	}
	return code, true
}

func (h *Handler) handleCreateError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Conflict:
		h.logger.WarnContext(ctx, "code conflict", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "duplicate_code",
			"Custom code already exists",
			map[string]string{
				"hint": "Try a different code or omit it to get a generated one",
			})

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid create request", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error creating link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to create short link at this time. Please try again.", nil)
	}
}

func (h *Handler) handleLookupError(ctx context.Context, w http.ResponseWriter, err error, code string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"code", code,
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, "code not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"short link doesn't exist", nil)

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid code", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error looking up link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to resolve this link at this time", nil)
	}
}

// validatePathCode is a lightweight check before the service layer sees
// the code. Full format rules only apply on create; lookups just reject
// values that cannot possibly match.
func validatePathCode(code string) error {
	if code == "" {
		return errors.New("code is required")
	}
	if len(code) > MaxCodeLength {
		return errors.New("invalid code")
	}
	return nil
}
