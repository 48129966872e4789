package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chathandler "github.com/playbuni/backend/internal/handler/chat"
	personahandler "github.com/playbuni/backend/internal/handler/persona"
	subscribehandler "github.com/playbuni/backend/internal/handler/subscribe"
	middlewarePkg "github.com/playbuni/backend/internal/middleware"
	"github.com/playbuni/backend/internal/service/ai"
	chatservice "github.com/playbuni/backend/internal/service/chat"
	personaservice "github.com/playbuni/backend/internal/service/persona"
	"github.com/playbuni/backend/internal/service/subscription"
	"github.com/playbuni/backend/internal/store/blobstore"
	"github.com/playbuni/backend/internal/store/chatstore"
	"github.com/playbuni/backend/pkg/utils"
)

// Deps carries everything the routes need. Nil optional fields degrade the
// matching endpoints rather than disabling the server.
type Deps struct {
	Chat          *chatservice.Pipeline
	ChatStore     chatstore.Store
	Personas      *personaservice.Pipeline
	Images        *ai.ImageClient
	Uploader      *blobstore.Uploader
	Subscriptions *subscription.Service

	SessionListCap  int
	DatabaseEnabled bool
	CacheEnabled    bool

	Logger *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(deps.Chat, deps.ChatStore, deps.SessionListCap, deps.DatabaseEnabled, deps.CacheEnabled, deps.Logger)
	personaHandler := personahandler.New(deps.Personas, deps.Images, deps.Uploader, deps.Logger)
	subscribeHandler := subscribehandler.New(deps.Subscriptions, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		personaHandler.RegisterRoutes(api)
		subscribeHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
