package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBank())
	if pool != nil {
		loader = pgstore.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)
	var bankRepo app.BankRepository
	if redisClient != nil {
		bankRepo = redisstore.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bankRepo = memory.NewBankRepository(loader, bankTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var scores app.ScoreStore
	var stats app.AnswerStatsStore
	switch {
	case pool != nil:
		scores = pgstore.NewScoreStore(pool)
		stats = pgstore.NewStatsStore(pool)
	case redisClient != nil:
		scores = redisstore.NewScoreStore(redisClient)
		stats = memory.NewStatsStore()
	default:
		scores = memory.NewScoreStore()
		stats = memory.NewStatsStore()
	}

	service := app.NewQuizService(sessions, bankRepo, scores, stats)
	service.SetAllowDuplicates(cfg.Quiz.AllowDuplicates)
	wsHandler := transport.NewWSHandler(service, cfg.Quiz.QuestionSeconds)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
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

// sampleBank provides a minimal bank so the service runs without a
// database; swap in the Postgres loader for real content.
func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{Categories: map[string]domain.Category{
		"history": {
			ID:   "history",
			Name: "History",
			Subcategories: map[string]domain.Subcategory{
				"japan": {
					ID:   "japan",
					Name: "Japanese History",
					Questions: []domain.RawQuestion{
						{
							Text:          "In which year did Tokugawa Ieyasu become shogun?",
							CorrectAnswer: "1603",
							Distractors:   []string{"1590", "1600", "1615"},
						},
						{
							Text:          "In which year did the Heian period begin?",
							CorrectAnswer: "794",
							Distractors:   []string{"710", "645", "1185"},
						},
					},
				},
				"world": {
					ID:   "world",
					Name: "World History",
					Questions: []domain.RawQuestion{
						{
							Text:          "In which year did the First World War begin?",
							CorrectAnswer: "1914",
							Distractors:   []string{"1917", "1939", "1941"},
						},
					},
				},
			},
		},
		"science": {
			ID:   "science",
			Name: "Science",
			Subcategories: map[string]domain.Subcategory{
				"mathematics": {
					ID:   "mathematics",
					Name: "Mathematics",
					Questions: []domain.RawQuestion{
						{
							Text:          "What are the first three digits of pi?",
							CorrectAnswer: "3.14",
							Distractors:   []string{"3.41", "3.16", "3.12"},
						},
					},
				},
				"physics": {
					ID:   "physics",
					Name: "Physics",
					Questions: []domain.RawQuestion{
						{
							Text:          "Roughly how fast does light travel?",
							CorrectAnswer: "300,000 km/s",
							Distractors:   []string{"100,000 km/s", "500,000 km/s", "1,000,000 km/s"},
						},
					},
				},
			},
		},
	}}
}
