package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/auth"
	"github.com/cairn-ai/cairn-engine/pkg/config"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/handlers"
	"github.com/cairn-ai/cairn-engine/pkg/llm"
	"github.com/cairn-ai/cairn-engine/pkg/logging"
	"github.com/cairn-ai/cairn-engine/pkg/middleware"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
	"github.com/cairn-ai/cairn-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("coach_model", cfg.CoachLLM.Model),
		zap.String("extraction_model", cfg.ExtractionLLM.Model),
	)

	ctx := context.Background()

	// Migrations run over database/sql; the pool below is pgx-native.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	scopes := database.NewScopeProvider(db)

	coachClient, err := llm.NewClient(&llm.ProviderConfig{
		Provider: cfg.CoachLLM.Provider,
		Endpoint: cfg.CoachLLM.Endpoint,
		Model:    cfg.CoachLLM.Model,
		APIKey:   cfg.CoachLLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create coach LLM client", zap.Error(err))
	}
	extractionClient, err := llm.NewClient(&llm.ProviderConfig{
		Provider: cfg.ExtractionLLM.Provider,
		Endpoint: cfg.ExtractionLLM.Endpoint,
		Model:    cfg.ExtractionLLM.Model,
		APIKey:   cfg.ExtractionLLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create extraction LLM client", zap.Error(err))
	}

	profileRepo := repositories.NewProfileRepository()
	skillRepo := repositories.NewSkillRepository()
	goalRepo := repositories.NewGoalRepository()
	projectRepo := repositories.NewProjectRepository()
	achievementRepo := repositories.NewAchievementRepository()
	challengeRepo := repositories.NewChallengeRepository()
	coworkerRepo := repositories.NewCoworkerRepository()
	interactionRepo := repositories.NewInteractionRepository(coworkerRepo)
	decisionRepo := repositories.NewDecisionRepository()
	conversationRepo := repositories.NewConversationRepository()
	suggestionRepo := repositories.NewSuggestionRepository()

	assembler := services.NewContextAssembler(services.ContextAssemblerDeps{
		Skills:        skillRepo,
		Goals:         goalRepo,
		Projects:      projectRepo,
		Achievements:  achievementRepo,
		Challenges:    challengeRepo,
		Coworkers:     coworkerRepo,
		Interactions:  interactionRepo,
		Decisions:     decisionRepo,
		Profiles:      profileRepo,
		Conversations: conversationRepo,
		Scopes:        scopes,
		Logger:        logger,
	})
	extractionService := services.NewExtractionService(services.ExtractionServiceDeps{
		Client:      extractionClient,
		Suggestions: suggestionRepo,
		Skills:      skillRepo,
		Goals:       goalRepo,
		Projects:    projectRepo,
		Challenges:  challengeRepo,
		Profiles:    profileRepo,
		Logger:      logger,
	})
	suggestionService := services.NewSuggestionService(services.SuggestionServiceDeps{
		Suggestions:  suggestionRepo,
		Skills:       skillRepo,
		Goals:        goalRepo,
		Projects:     projectRepo,
		Challenges:   challengeRepo,
		Achievements: achievementRepo,
		Profiles:     profileRepo,
		Logger:       logger,
	})
	chatService := services.NewChatService(services.ChatServiceDeps{
		Assembler:     assembler,
		Extraction:    extractionService,
		Conversations: conversationRepo,
		Coach:         coachClient,
		Scopes:        scopes,
		Logger:        logger,
	})

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(jwksClient, scopes, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSuggestionsHandler(suggestionService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting cairn-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
