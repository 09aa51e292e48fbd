package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/vidscribe-ai/platform/pkg/collect"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/database"
	"github.com/vidscribe-ai/platform/pkg/common/kafka"
	"github.com/vidscribe-ai/platform/pkg/common/logger"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"github.com/vidscribe-ai/platform/pkg/embedding"
	"github.com/vidscribe-ai/platform/pkg/jobstore"
	"github.com/vidscribe-ai/platform/pkg/scoring"
)

type IntakeService struct {
	repo     *jobstore.Repository
	chunks   *embedding.Repository
	trending *scoring.RankingEngine
	producer *kafka.Producer
	consumer *kafka.Consumer
}

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to job store")
	}
	defer database.ClosePostgres()

	repo := jobstore.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}

	service := &IntakeService{
		repo:     repo,
		chunks:   embedding.NewRepository(db),
		trending: scoring.NewRankingEngine(db, repo, cfg.RankingWindow, cfg.RankingSize),
	}

	service.producer = kafka.NewProducer(cfg.JobEventsTopic)
	defer service.producer.Close()

	service.consumer = kafka.NewConsumer(cfg.IntakeTopic, "intake-service")
	defer service.consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := service.consumer.Consume(ctx, service.processEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Fatal("Consumer error")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/api/v1/posts", service.handleSubmit).Methods("POST")
	router.HandleFunc("/api/v1/jobs/{code}", service.handleGetJob).Methods("GET")
	router.HandleFunc("/api/v1/owners/{owner_id}", service.handleGetAccount).Methods("GET")
	router.HandleFunc("/api/v1/owners/{owner_id}/metrics", service.handleListMetrics).Methods("GET")
	router.HandleFunc("/api/v1/trending", service.handleTrending).Methods("GET")
	router.HandleFunc("/api/v1/search", service.handleSearch).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      http.MaxBytesHandler(router, cfg.MaxRequestBody),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Intake Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Intake Service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Intake Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// processEvent enqueues jobs submitted through the intake topic. A post
// with no resolvable code is dropped after logging, never retried.
func (s *IntakeService) processEvent(ctx context.Context, event models.Event) error {
	rawURL, ok := event.Data["url"].(string)
	if !ok || rawURL == "" {
		logger.Log.WithFields(map[string]interface{}{
			"event_id": event.ID,
		}).Warn("Intake event has no url field")
		return nil
	}

	code, err := collect.PostCodeFromURL(rawURL)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
		}).Warn("Discarding intake event with bad url")
		return nil
	}

	audioURL, _ := event.Data["audio_url"].(string)
	created, err := s.enqueue(ctx, code, audioURL)
	if err != nil {
		return err
	}
	if created {
		logger.Log.WithFields(map[string]interface{}{
			"code":     code,
			"event_id": event.ID,
		}).Info("Job enqueued from intake topic")
	}
	return nil
}

func (s *IntakeService) enqueue(ctx context.Context, code, audioURL string) (bool, error) {
	created, err := s.repo.CreateJob(ctx, code, nil, audioURL, "")
	if err != nil {
		return false, err
	}
	if !created && audioURL != "" {
		// A resubmission may carry the audio URL a waiting job lacked.
		if err := s.repo.PromoteAwaiting(ctx, code, audioURL); err != nil && !errors.Is(err, jobstore.ErrIllegalTransition) {
			return false, err
		}
	}
	if created {
		if err := s.producer.PublishEvent(ctx, "job.created", "intake-service", map[string]interface{}{
			"code": code,
		}); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"code": code,
			}).Error("Failed to publish job.created event")
		}
	}
	return created, nil
}

func (s *IntakeService) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		AudioURL string `json:"audio_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	code, err := collect.PostCodeFromURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.enqueue(r.Context(), code, req.AudioURL)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to enqueue job")
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"code":    code,
		"created": created,
	})
}

func (s *IntakeService) handleGetJob(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	job, err := s.repo.GetJobByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		logger.Log.WithError(err).Error("Failed to load job")
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *IntakeService) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["owner_id"]

	account, err := s.repo.GetAccountSummary(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		logger.Log.WithError(err).Error("Failed to load account")
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *IntakeService) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["owner_id"]
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	metrics, err := s.repo.ListMetricsByOwner(r.Context(), ownerID, q.Get("sort"), limit, offset)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list metrics")
		writeError(w, http.StatusInternalServerError, "failed to list metrics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"owner_id": ownerID,
		"metrics":  metrics,
	})
}

func (s *IntakeService) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	posts, err := s.trending.TopTrending(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to load trending posts")
		writeError(w, http.StatusInternalServerError, "failed to load trending posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"trending": posts})
}

func (s *IntakeService) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Embedding []float32 `json:"embedding"`
		K         int       `json:"k"`
		Exclude   []string  `json:"exclude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Embedding) == 0 {
		writeError(w, http.StatusBadRequest, "embedding is required")
		return
	}

	results, err := s.chunks.SearchChunks(r.Context(), req.Embedding, req.K, req.Exclude)
	if err != nil {
		logger.Log.WithError(err).Error("Similarity search failed")
		writeError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
