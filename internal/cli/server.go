package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	pgloader "timed-quiz-service/internal/infra/postgres"
	redisinfra "timed-quiz-service/internal/infra/redis"
	transport "timed-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks())
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewQuizService(sessions, banks, app.ServiceConfig{
		QuestionsPerRound: config.PositiveInt(cfg.Quiz.QuestionsPerRound, app.DefaultQuestionsPerRound),
		QuestionSeconds:   config.PositiveInt(cfg.Quiz.QuestionSeconds, 30),
	})
	apiHandler := transport.NewAPIHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	apiHandler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides demo question banks; swap the loader for the
// Postgres-backed one in production.
func sampleBanks() map[string]map[string][]domain.Question {
	return map[string]map[string][]domain.Question{
		"general": {
			"easy": {
				{
					ID:            "gen-easy-1",
					Prompt:        "What is the capital of France?",
					Options:       []string{"London", "Paris", "Berlin", "Madrid"},
					CorrectAnswer: "Paris",
				},
				{
					ID:            "gen-easy-2",
					Prompt:        "How many continents are there?",
					Options:       []string{"5", "6", "7", "8"},
					CorrectAnswer: "7",
				},
				{
					ID:            "gen-easy-3",
					Prompt:        "Which planet is known as the Red Planet?",
					Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
					CorrectAnswer: "Mars",
				},
				{
					ID:            "gen-easy-4",
					Prompt:        "What is the largest ocean on Earth?",
					Options:       []string{"Atlantic", "Indian", "Arctic", "Pacific"},
					CorrectAnswer: "Pacific",
				},
			},
			"medium": {
				{
					ID:            "gen-med-1",
					Prompt:        "In which year did World War II end?",
					Options:       []string{"1943", "1944", "1945", "1946"},
					CorrectAnswer: "1945",
				},
				{
					ID:            "gen-med-2",
					Prompt:        "What is the chemical symbol for gold?",
					Options:       []string{"Go", "Gd", "Au", "Ag"},
					CorrectAnswer: "Au",
				},
			},
		},
		"science": {
			"easy": {
				{
					ID:            "sci-easy-1",
					Prompt:        "What gas do plants absorb from the atmosphere?",
					Options:       []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"},
					CorrectAnswer: "Carbon dioxide",
				},
				{
					ID:            "sci-easy-2",
					Prompt:        "How many bones are in the adult human body?",
					Options:       []string{"186", "206", "226", "246"},
					CorrectAnswer: "206",
				},
			},
		},
	}
}
