package persona

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	personamodel "github.com/playbuni/backend/internal/model/persona"
	"github.com/playbuni/backend/internal/service/ai"
	personaservice "github.com/playbuni/backend/internal/service/persona"
	"github.com/playbuni/backend/internal/store/blobstore"
	"github.com/playbuni/backend/internal/store/personastore"
	"github.com/playbuni/backend/pkg/utils"
)

const defaultRecentLimit = 10

// Handler exposes persona generation, the portrait flow, and the gallery
// reads.
type Handler struct {
	pipeline *personaservice.Pipeline
	images   *ai.ImageClient
	uploader *blobstore.Uploader
	logger   *zap.Logger
}

// New creates the persona handler. images and uploader may be nil; the image
// endpoint then serves trait placeholders.
func New(pipeline *personaservice.Pipeline, images *ai.ImageClient, uploader *blobstore.Uploader, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		images:   images,
		uploader: uploader,
		logger:   logger.Named("personahandler"),
	}
}

// RegisterRoutes mounts the persona surface.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/persona/generate", h.handleGenerate)
	r.Post("/persona/image", h.handleImage)
	r.Get("/persona/recent", h.handleRecent)
	r.Get("/persona/stats", h.handleStats)
	r.Get("/persona/{id}", h.handleGet)
}

type generateRequest struct {
	Scores  personamodel.TraitScores `json:"scores"`
	Profile personamodel.Profile     `json:"profile"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.pipeline.Generate(r.Context(), payload.Scores, payload.Profile)
	utils.RespondJSON(w, http.StatusOK, result)
}

type imageRequest struct {
	PersonaID         string   `json:"personaId"`
	AgentName         string   `json:"agentName"`
	Appearance        string   `json:"appearance"`
	PersonalityTraits []string `json:"personalityTraits"`
	DominantTrait     string   `json:"dominantTrait"`
}

type imageResponse struct {
	ImageURL    string `json:"imageUrl"`
	Placeholder bool   `json:"placeholder"`
}

// handleImage renders a portrait for an existing persona. Every failure mode
// degrades to the trait placeholder so the quiz UI always gets an image.
func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	var payload imageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject := personamodel.AIPersona{
		ID:                payload.PersonaID,
		AgentName:         payload.AgentName,
		Appearance:        payload.Appearance,
		PersonalityTraits: payload.PersonalityTraits,
		DominantTrait:     payload.DominantTrait,
	}
	if payload.PersonaID != "" {
		if stored, err := h.pipeline.GetByID(r.Context(), payload.PersonaID); err == nil {
			subject = stored
		}
	}

	imageURL, placeholder := h.renderPortrait(r, subject)

	if !placeholder && subject.ID != "" {
		if err := h.pipeline.AttachImage(r.Context(), subject.ID, imageURL); err != nil {
			h.logger.Warn("portrait attach failed", zap.String("id", subject.ID), zap.Error(err))
		}
	}

	utils.RespondJSON(w, http.StatusOK, imageResponse{ImageURL: imageURL, Placeholder: placeholder})
}

func (h *Handler) renderPortrait(r *http.Request, subject personamodel.AIPersona) (string, bool) {
	if h.images == nil {
		return personamodel.PlaceholderImageURL(subject.DominantTrait), true
	}

	providerURL, err := h.images.GeneratePortrait(r.Context(), subject)
	if err != nil {
		h.logger.Warn("portrait generation failed", zap.Error(err))
		return personamodel.PlaceholderImageURL(subject.DominantTrait), true
	}

	if h.uploader == nil {
		return providerURL, false
	}

	data, err := h.images.FetchImage(r.Context(), providerURL)
	if err != nil {
		h.logger.Warn("portrait download failed, serving provider url", zap.Error(err))
		return providerURL, false
	}

	durable, err := h.uploader.Upload(r.Context(), personaservice.PortraitFilename(subject.AgentName), data, "image/png")
	if err != nil {
		h.logger.Warn("portrait upload failed, serving provider url", zap.Error(err))
		return providerURL, false
	}
	return durable, false
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	personas := h.pipeline.Recent(r.Context(), limit)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"personas": personas})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"stats": h.pipeline.Stats(r.Context())})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := h.pipeline.GetByID(r.Context(), id)
	if errors.Is(err, personastore.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	if err != nil {
		h.logger.Error("persona read failed", zap.String("id", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch persona")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"persona": stored})
}
