// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclient "jobmarket-workers/internal/common/aws"
	"jobmarket-workers/internal/common/camunda"
	"jobmarket-workers/internal/common/config"
	"jobmarket-workers/internal/common/database"
	commonhttp "jobmarket-workers/internal/common/http"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/observability"
	"jobmarket-workers/internal/dashboard"
	"jobmarket-workers/internal/events"
	"jobmarket-workers/internal/identity"
	"jobmarket-workers/internal/indexer"
	"jobmarket-workers/internal/lifecycle"
	"jobmarket-workers/internal/repository/elasticsearch"
	"jobmarket-workers/internal/repository/postgres"
	"jobmarket-workers/internal/search"

	aas "jobmarket-workers/internal/workers/application/advance-application-status"
	atj "jobmarket-workers/internal/workers/application/apply-to-job"
	laa "jobmarket-workers/internal/workers/application/list-applicant-applications"
	lja "jobmarket-workers/internal/workers/application/list-job-applications"
	sn "jobmarket-workers/internal/workers/application/send-notification"
	vad "jobmarket-workers/internal/workers/application/view-application-detail"
	wa "jobmarket-workers/internal/workers/application/withdraw-application"
	ad "jobmarket-workers/internal/workers/dashboard/application-dashboard"
	ijp "jobmarket-workers/internal/workers/jobs/index-job-posting"
	sj "jobmarket-workers/internal/workers/jobs/search-jobs"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	logger.Sync(log)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Logging).With(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	defer logger.Sync(log)

	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		fatal(log, "postgres failed after retries", err)
	}
	defer pg.Close()
	log.Info("PostgreSQL connected successfully", nil)

	if cfg.Database.Postgres.AutoMigrate {
		version, err := pg.Migrate(ctx)
		if err != nil {
			fatal(log, "database migration failed", err)
		}
		log.Info("Database schema up to date", map[string]interface{}{"version": version})
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		fatal(log, "redis failed after retries", err)
	}
	defer rdb.Close()
	log.Info("Redis connected successfully", nil)

	// --- Elasticsearch (optional) ---
	var es *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.GetURL() != "" {
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			fatal(log, "elasticsearch failed after retries", err)
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	// --- AWS ---
	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
	if err != nil {
		fatal(log, "aws config failed", err)
	}
	sesClient := awsclient.NewSESClient(awsCfg)
	snsClient := awsclient.NewSNSClient(awsCfg)

	// --- Domain wiring ---
	applications := postgres.NewApplicationRepository(pg.DB)
	postings := postgres.NewJobPostingRepository(pg.DB)
	notifications := postgres.NewNotificationRepository(pg.DB)
	identities := identity.NewCachedResolver(
		postgres.NewIdentityRepository(pg.DB),
		rdb.GetClient(),
		config.GetDuration(cfg.Cache.IdentityTTL),
		log,
	)

	var sinks []events.Sink
	if arn := cfg.Notifications.Events.SNSTopicARN; arn != "" {
		sinks = append(sinks, events.NewSNSSink(snsClient, arn))
	}
	if cfg.Notifications.Events.ZeebeMessages {
		sinks = append(sinks, events.NewZeebeSink(zeebe))
	}
	publisher := events.NewAsyncPublisher(sinks, config.GetDuration(cfg.Notifications.Events.Timeout), log)

	engine := lifecycle.NewEngine(identities, postings, applications, publisher, log,
		lifecycle.WithIDGenerator(func() string { return uuid.New().String() }),
	)
	dashboards := dashboard.NewService(identities, postgres.NewDashboardRepository(pg.DB), log)

	var backend search.Backend = postings
	var postingIndex *elasticsearch.PostingIndex
	if es != nil {
		postingIndex = elasticsearch.NewPostingIndex(es, cfg.Search.Index)
		if err := postingIndex.EnsureIndex(ctx); err != nil {
			fatal(log, "job index setup failed", err)
		}
		if cfg.Search.Backend == config.SearchBackendElasticsearch {
			backend = elasticsearch.NewSearchBackend(es, cfg.Search.Index)
		}
	}
	searcher := search.NewService(backend, log, cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	log.Info("Job search backend selected", map[string]interface{}{"backend": backend.Name()})

	// --- Workers ---
	handlers := map[string]worker.JobHandler{
		atj.TaskType: atj.NewHandler(atj.LoadConfig(), engine, log).Handle,
		wa.TaskType:  wa.NewHandler(wa.LoadConfig(), engine, log).Handle,
		aas.TaskType: aas.NewHandler(aas.LoadConfig(), engine, log).Handle,
		vad.TaskType: vad.NewHandler(vad.LoadConfig(), engine, log).Handle,
		laa.TaskType: laa.NewHandler(laa.LoadConfig(), engine, log).Handle,
		lja.TaskType: lja.NewHandler(lja.LoadConfig(), engine, log).Handle,
		sj.TaskType:  sj.NewHandler(sj.LoadConfig(), searcher, log).Handle,
		ad.TaskType:  ad.NewHandler(ad.LoadConfig(), dashboards, log).Handle,
		sn.TaskType: sn.NewHandler(sn.LoadConfig(cfg.Notifications), notifications, notifications,
			sesClient, snsClient, log).Handle,
	}
	if postingIndex != nil {
		handlers[ijp.TaskType] = ijp.NewHandler(ijp.LoadConfig(), postings, postingIndex, log).Handle
	} else {
		log.Warn("Elasticsearch not configured, index worker not started", map[string]interface{}{"taskType": ijp.TaskType})
	}

	var jobWorkers []worker.JobWorker
	for taskType, handler := range handlers {
		w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log)
		if w != nil {
			jobWorkers = append(jobWorkers, w)
		}
	}
	log.Info("Workers registered", map[string]interface{}{"count": len(jobWorkers)})

	// --- Scheduled re-index ---
	var ix *indexer.Indexer
	if cfg.Indexer.Enabled && postingIndex != nil {
		ix = indexer.New(postings, postingIndex, cfg.Indexer.BatchSize, log)
		if err := ix.Start(cfg.Indexer.Schedule); err != nil {
			fatal(log, "indexer schedule invalid", err)
		}
	}

	// --- Health, readiness and metrics ---
	checks := map[string]commonhttp.Check{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
		"zeebe":    zeebe.HealthCheck,
	}
	if es != nil {
		checks["elasticsearch"] = es.Ping
	}
	health := commonhttp.NewHealthServer(cfg.Server.Address, checks, log)
	health.Start()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)

	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if ix != nil {
		ix.Stop(shutdownCtx)
	}
	if err := publisher.Close(shutdownCtx); err != nil {
		log.Warn("Pending events not delivered before shutdown", map[string]interface{}{"error": err.Error()})
	}
	if err := health.Shutdown(shutdownCtx); err != nil {
		log.Warn("Health server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped", nil)
}
