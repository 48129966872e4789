package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	chatmodel "github.com/playbuni/backend/internal/model/chat"
	chatservice "github.com/playbuni/backend/internal/service/chat"
	"github.com/playbuni/backend/internal/service/localchat"
	"github.com/playbuni/backend/internal/store/chatstore"
	"github.com/playbuni/backend/pkg/utils"
)

// Handler exposes the chat pipeline over HTTP.
type Handler struct {
	pipeline *chatservice.Pipeline
	store    chatstore.Store
	listCap  int
	dbReady  bool
	cacheOn  bool
	logger   *zap.Logger
}

// New creates the chat handler. dbReady and cacheOn feed the diagnostic
// endpoint only.
func New(pipeline *chatservice.Pipeline, store chatstore.Store, listCap int, dbReady, cacheOn bool, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		listCap:  listCap,
		dbReady:  dbReady,
		cacheOn:  cacheOn,
		logger:   logger.Named("chathandler"),
	}
}

// RegisterRoutes mounts the chat surface.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/diagnostic", h.handleDiagnostic)
	r.Get("/chat/history", h.handleHistory)
	r.Get("/chat/stream", h.handleStream)
}

type chatRequest struct {
	Messages  []chatmodel.IncomingMessage `json:"messages"`
	UserID    string                      `json:"userId"`
	SessionID string                      `json:"sessionId"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.pipeline.Handle(r.Context(), chatservice.Request{
		Messages:  payload.Messages,
		UserID:    payload.UserID,
		SessionID: payload.SessionID,
	})
	if errors.Is(err, chatservice.ErrNoMessages) {
		utils.RespondError(w, http.StatusBadRequest, "messages are required")
		return
	}
	if err != nil {
		// The pipeline absorbs generation and persistence failures, so this
		// path is a genuine crash. The envelope still carries renderable text.
		h.logger.Error("chat pipeline crashed", zap.Error(err))
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":           "chat processing error",
			"message":         err.Error(),
			"fallbackContent": h.pipeline.FallbackContent(chatmodel.LastUserContent(payload.Messages)),
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userText := chatmodel.LastUserContent(payload.Messages)
	preview := userText
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}

	connectionStatus := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		connectionStatus = "error: " + err.Error()
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"diagnostics": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"environment": map[string]bool{
				"providerAvailable":  h.pipeline.RemoteAvailable(),
				"databaseConfigured": h.dbReady,
				"cacheConfigured":    h.cacheOn,
			},
			"database": map[string]string{
				"connectionStatus": connectionStatus,
			},
			"request": map[string]any{
				"messageCount":    len(payload.Messages),
				"lastUserMessage": preview,
				"category":        localchat.Categorize(userText),
			},
		},
		"content":   localchat.Generate(userText),
		"sessionId": uuid.NewString(),
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	userID := r.URL.Query().Get("userId")

	if sessionID != "" {
		messages, err := h.store.ListMessages(r.Context(), sessionID)
		if errors.Is(err, chatstore.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			h.logger.Error("message listing failed", zap.String("session", sessionID), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to fetch chat history")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
		return
	}

	sessions, err := h.store.ListSessions(r.Context(), userID, h.listCap)
	if err != nil {
		h.logger.Error("session listing failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// sseSink forwards pipeline deltas as SSE frames.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

type streamEvent struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *sseSink) Delta(content string) error {
	utils.SendSSEChunk(s.w, s.flusher, streamEvent{Event: "delta", Content: content})
	return nil
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	utils.SetupSSEHeaders(w)

	req := chatservice.Request{
		Messages:  []chatmodel.IncomingMessage{{Role: chatmodel.RoleUser, Content: message}},
		UserID:    r.URL.Query().Get("userId"),
		SessionID: r.URL.Query().Get("sessionId"),
	}

	sink := &sseSink{w: w, flusher: flusher}
	utils.SendSSEChunk(w, flusher, streamEvent{Event: "start"})

	reply, err := h.pipeline.HandleStream(r.Context(), req, sink)
	if err != nil {
		utils.SendSSEChunk(w, flusher, streamEvent{Event: "error", Error: err.Error()})
		return
	}

	utils.SendSSEChunk(w, flusher, streamEvent{
		Event:     "message",
		Content:   reply.Content,
		SessionID: reply.SessionID,
	})
	utils.SendSSEChunk(w, flusher, streamEvent{
		Event:     "end",
		SessionID: reply.SessionID,
		Finished:  true,
	})
}
