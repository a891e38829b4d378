// Package webhook implements the ingestion gate: it authenticates inbound
// device-event requests, validates them, and drives rendering, delivery and
// binding feedback. Once a request is structurally valid the gate always
// acknowledges with 200 so the upstream sender never retry-storms a
// transient internal failure.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"device-relay-bot/internal/docstore"
	"device-relay-bot/internal/domain"
	apperrors "device-relay-bot/internal/errors"
	"device-relay-bot/internal/event"
	"device-relay-bot/internal/idempotency"
	"device-relay-bot/internal/registry"
	"device-relay-bot/pkg/metrics"
)

// Deliverer sends a rendered descriptor batch to a conversation.
type Deliverer interface {
	Send(ctx context.Context, chatID int64, msgs []event.Message) error
}

// Handler serves the webhook routes.
type Handler struct {
	secret    []byte
	maxBody   int64
	store     docstore.Store
	renderer  *event.Renderer
	deliverer Deliverer
	dedupe    idempotency.Deduper
	errs      *apperrors.Handler
	log       *slog.Logger
}

// Options wires the gate's collaborators. Dedupe may be nil, in which case
// every structurally valid request is processed.
type Options struct {
	Secret    string
	MaxBody   int64
	Store     docstore.Store
	Renderer  *event.Renderer
	Deliverer Deliverer
	Dedupe    idempotency.Deduper
	Errors    *apperrors.Handler
	Log       *slog.Logger
}

func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = 20 << 20
	}

	errs := opts.Errors
	if errs == nil {
		errs = apperrors.NewHandler(log, false)
	}

	return &Handler{
		secret:    []byte(opts.Secret),
		maxBody:   maxBody,
		store:     opts.Store,
		renderer:  opts.Renderer,
		deliverer: opts.Deliverer,
		dedupe:    opts.Dedupe,
		errs:      errs,
		log:       log,
	}
}

type notifyRequest struct {
	ChatID    int64        `json:"chat_id"`
	EventData *event.Event `json:"event_data"`
}

// Notify handles POST /notify.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorized(r) {
		h.errs.Handle(ctx, apperrors.NewAuthError("unauthorized request to /notify from "+r.RemoteAddr))
		respond(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request: invalid JSON")
		return
	}
	if req.ChatID == 0 || req.EventData == nil {
		respond(w, http.StatusBadRequest, "Bad Request: missing chat_id or event_data")
		return
	}

	msgs, err := h.renderer.Render(req.EventData)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			respond(w, http.StatusBadRequest, appErr.UserMessage)
			return
		}
		respond(w, http.StatusBadRequest, "Bad Request")
		return
	}

	metrics.RecordEvent(string(req.EventData.Type))

	// Past this point the request is accepted: every outcome is 200.
	if len(msgs) == 0 {
		respond(w, http.StatusOK, "OK")
		return
	}

	if h.isDuplicate(ctx, req.ChatID, req.EventData) {
		respond(w, http.StatusOK, "OK")
		return
	}

	h.process(ctx, req.ChatID, req.EventData, msgs)
	respond(w, http.StatusOK, "OK")
}

// process resolves the binding, delivers the batch, and feeds a permanent
// delivery failure back into the stored binding state. Internal failures
// are logged, never surfaced.
func (h *Handler) process(ctx context.Context, chatID int64, ev *event.Event, msgs []event.Message) {
	doc, err := h.store.Read(ctx)
	if err != nil {
		h.errs.Handle(ctx, err)
		h.log.Warn("dropping event, user document unavailable",
			slog.Int64("chat_id", chatID),
			slog.String("type", string(ev.Type)),
		)
		return
	}

	user := registry.FindByChatID(doc, chatID)
	if user == nil {
		h.log.Warn("no binding for conversation, dropping event",
			slog.Int64("chat_id", chatID),
			slog.String("type", string(ev.Type)),
		)
		return
	}
	if user.Binding.Status != domain.StatusActive {
		h.log.Warn("binding not active, dropping event",
			slog.Int64("chat_id", chatID),
			slog.String("status", user.Binding.Status),
		)
		return
	}

	if err := h.deliverer.Send(ctx, chatID, msgs); err != nil {
		h.errs.Handle(ctx, err)

		if apperrors.IsPermanent(err) {
			h.deactivateBinding(ctx, chatID)
		}
	}
}

// deactivateBinding re-reads the document and persists the bot_blocked
// transition. Re-reading avoids clobbering activations that happened while
// the delivery attempts were running.
func (h *Handler) deactivateBinding(ctx context.Context, chatID int64) {
	doc, err := h.store.Read(ctx)
	if err != nil {
		h.log.Error("cannot load document to deactivate binding",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return
	}

	user := registry.FindByChatID(doc, chatID)
	if user == nil || !registry.MarkBlocked(user) {
		return
	}

	if err := h.store.Write(ctx, doc); err != nil {
		h.log.Error("cannot persist blocked binding",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return
	}

	metrics.RecordBindingTransition(domain.StatusBlocked)
	h.log.Warn("binding deactivated after permanent delivery failure",
		slog.Int64("chat_id", chatID),
		slog.String("user_id", user.UserID),
	)
}

func (h *Handler) isDuplicate(ctx context.Context, chatID int64, ev *event.Event) bool {
	if h.dedupe == nil {
		return false
	}

	seen, err := h.dedupe.Seen(ctx, idempotency.EventKey(chatID, ev))
	if err != nil {
		// Dedupe is best effort; on backend failure the event is processed.
		h.log.Warn("dedupe check failed", slog.Any("error", err))
		return false
	}
	if seen {
		h.log.Info("duplicate event ignored",
			slog.Int64("chat_id", chatID),
			slog.String("fingerprint", ev.Fingerprint),
		)
	}

	return seen
}

// authorized runs a constant-time comparison of the bearer token.
func (h *Handler) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), h.secret) == 1
}

func respond(w http.ResponseWriter, status int, body string) {
	metrics.RecordWebhookRequest(status)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
