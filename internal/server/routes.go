package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"covidbot/internal/db"
	"covidbot/internal/handlers"
	"covidbot/internal/handlers/api"
	"covidbot/internal/messaging"
	"covidbot/internal/middleware"
)

// Deps carries the collaborators the route handlers need.
type Deps struct {
	DB        *db.DB
	Resolver  handlers.Resolver
	Sender    messaging.Sender
	Annotator api.Annotator
	Matcher   api.Matcher
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	askHandler := handlers.NewAskHandler(deps.Resolver, deps.Sender, s.Cfg.SupportedLanguage)
	volunteerHandler := handlers.NewVolunteerHandler(deps.DB)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	s.App.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "covidbot"})
	})

	// The two public endpoints the original exposes: the Twilio webhook
	// and volunteer sign-up.
	s.App.Post("/ask", askHandler.Ask)
	s.App.Post("/volunteer", volunteerHandler.Register)

	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if !s.Cfg.IsAdminAPIEnabled() {
		log.Println("OIDC_ISSUER not set; admin API is disabled")
		return nil
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
	if err != nil {
		return err
	}
	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	authMiddleware := middleware.NewAuthMiddleware()
	knowledgeHandler := api.NewKnowledgeHandler(deps.DB, deps.Annotator, deps.Matcher)
	apiVolunteerHandler := api.NewVolunteerHandler(deps.DB)
	handoverHandler := api.NewHandoverHandler(deps.DB)

	admin := s.App.Group("/api", authMiddleware.RequireAuth)

	admin.Get("/topics", knowledgeHandler.ListTopics)
	admin.Post("/topics", knowledgeHandler.CreateTopic)
	admin.Get("/topics/:id", knowledgeHandler.GetTopic)
	admin.Put("/topics/:id/keywords", knowledgeHandler.UpdateTopicKeywords)
	admin.Post("/topics/:id/subtopics", knowledgeHandler.CreateSubtopic)
	admin.Get("/subtopics/:id", knowledgeHandler.GetSubtopic)
	admin.Post("/subtopics/:id/questions", knowledgeHandler.CreateQuestion)
	admin.Put("/questions/:id", knowledgeHandler.UpdateQuestion)

	admin.Get("/volunteers", apiVolunteerHandler.List)
	admin.Get("/handovers", handoverHandler.ListRequests)
	admin.Get("/blacklist", handoverHandler.ListBlacklist)
	admin.Post("/blacklist", handoverHandler.AddToBlacklist)
	admin.Get("/outcomes", handoverHandler.ListOutcomes)

	return nil
}
