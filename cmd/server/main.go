package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"covidbot/internal/config"
	"covidbot/internal/db"
	"covidbot/internal/dialogue"
	"covidbot/internal/handlers/api"
	"covidbot/internal/handover"
	"covidbot/internal/jobs"
	"covidbot/internal/messaging"
	"covidbot/internal/metrics"
	"covidbot/internal/nlp"
	"covidbot/internal/ranking"
	"covidbot/internal/rules"
	"covidbot/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ruleStore := rules.NewStore()
	matcher, err := rules.NewEngine(ruleStore)
	if err != nil {
		log.Fatalf("Failed to build rule matcher: %v", err)
	}

	annotator := nlp.NewClient(cfg.CoreNLPURL)
	ranker := ranking.NewEngine(database)
	sender := messaging.NewTwilioSender(cfg)
	recorder := metrics.Init(database)
	handoverManager := handover.NewManager(database, sender, cfg.HumanPhoneNumber)

	knowledge := api.NewKnowledgeHandler(database, annotator, matcher)
	if err := knowledge.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to load knowledge-base rules: %v", err)
	}

	interpreter := dialogue.NewInterpreter(
		database,
		annotator,
		ranker,
		matcher,
		handoverManager,
		recorder,
		cfg.HumanPhoneNumber,
		cfg.HandoverLanguage,
	)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, server.Deps{
		DB:        database,
		Resolver:  interpreter,
		Sender:    sender,
		Annotator: annotator,
		Matcher:   matcher,
	}); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	compactor := jobs.NewRuleCompactor(matcher, cfg.RuleCompactInterval, cfg.RuleTTL)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		compactor.Start(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
