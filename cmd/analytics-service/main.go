package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-news-analytics/internal/analytics/config"
	delivery "golang-news-analytics/internal/analytics/delivery/http"
	"golang-news-analytics/internal/analytics/delivery/scheduler"
	_ "golang-news-analytics/internal/analytics/docs"
	"golang-news-analytics/internal/analytics/nlp"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/analytics/strategy"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/common"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/postgres"
	"golang-news-analytics/pkg/redis"
	"golang-news-analytics/pkg/telegram"
	"golang-news-analytics/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analytics service with its cron schedule and ops API",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run <job-type>",
	Short: "Runs one analytics pass and exits",
	Args:  cobra.ExactArgs(1),
	Run:   runOnce,
}

// components holds everything built from the configuration.
type components struct {
	cfg       *config.Config
	logger    *logger.Logger
	registry  *prometheus.Registry
	executor  service.ExecutorService
	runRepo   repository.RunRepository
	trendRepo repository.TrendRepository
	jobs      []entity.Job
	closers   []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func bootstrap() *components {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	c := &components{cfg: cfg, logger: appLogger}
	c.closers = append(c.closers, func() { _ = appLogger.Sync() })

	appLogger.Info("Starting Analytics Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		c.closers = append(c.closers, func() { _ = sqlDB.Close() })
	}

	clock := utils.SystemClock()
	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(c.registry)

	// Initialize Redis. Without it story locks stay in-process and run events are not published.
	var (
		locker      service.EntityLocker = utils.NewKeyedMutex()
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		c.closers = append(c.closers, func() { _ = redisClient.Close() })
		locker = redis.NewLocker(redisClient.Client, common.RedisStoryLockPrefix, cfg.Story.LockTTL, cfg.Story.LockWait)
	} else {
		appLogger.Warn("Redis is not configured, using in-process story locks")
	}

	// Initialize repositories
	articleRepo := repository.NewArticleRepository(db.DB)
	trendRepo := repository.NewTrendRepository(db.DB)
	c.trendRepo = trendRepo
	storyRepo := repository.NewStoryRepository(db.DB)
	c.runRepo = repository.NewRunRepository(db.DB)

	// Initialize text generation provider
	var generator repository.TextGenerator
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		generator = repository.NewGeminiTextGenerator(cfg, appLogger, genAiClient)
	case "":
		appLogger.Info("No AI provider configured, story text uses templates")
	default:
		appLogger.Fatal("Invalid AI provider specified in config", logger.StringField("provider", cfg.AI.Provider))
	}

	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	rpm := cfg.Gemini.MaxRequestPerMinute
	if rpm <= 0 {
		rpm = 1
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	textQueue := service.NewTextTaskQueue(
		generator,
		limiter,
		clock,
		utils.SleepContext,
		cache.New(cfg.Story.TextTaskCacheTTL, 2*cfg.Story.TextTaskCacheTTL),
		cfg.Story.TextTaskMaxWait,
		appLogger,
		metrics,
	)

	// Initialize services
	relevancySvc := service.NewRelevancyService(cfg, appLogger, clock, storyRepo)
	keywordSvc := service.NewKeywordTrendService(cfg, appLogger, clock, articleRepo, trendRepo, metrics)
	entitySvc := service.NewEntityTrendService(cfg, appLogger, clock, articleRepo, trendRepo, nlp.NewEntityExtractor(), metrics)
	storySvc := service.NewStoryClusteringService(
		cfg,
		appLogger,
		clock,
		articleRepo,
		storyRepo,
		locker,
		textQueue,
		service.NewNarrativeAssembler(),
		service.NewRelationshipBuilder(cfg.Story.MaxRelatedStories),
		relevancySvc,
		notifier,
		metrics,
	)

	// Initialize strategies
	strategies := []strategy.JobExecutionStrategy{
		strategy.NewKeywordTrendStrategy(appLogger, clock, keywordSvc, cfg.Analytics.MaxConcurrentTasks),
		strategy.NewEntityTrendStrategy(appLogger, clock, entitySvc, cfg.Analytics.MaxConcurrentTasks),
		strategy.NewStoryClusteringStrategy(appLogger, clock, storySvc),
		strategy.NewRelevancyStrategy(appLogger, clock, relevancySvc),
	}
	jobStrategies := make([]service.JobStrategy, 0, len(strategies))
	for _, s := range strategies {
		jobStrategies = append(jobStrategies, s)
	}

	var streamClient goRedis.Cmdable
	if redisClient != nil {
		streamClient = redisClient.Client
	}
	c.executor = service.NewExecutorService(cfg, appLogger, clock, c.runRepo, streamClient, notifier, metrics, jobStrategies)

	c.jobs, err = scheduler.JobsFromConfig(cfg.Jobs)
	if err != nil {
		appLogger.Fatal("Invalid job configuration", logger.ErrorField(err))
	}
	return c
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := bootstrap()
	defer c.close()
	appLogger := c.logger

	// Start cron runner
	cronRunner := scheduler.NewCronRunner(appLogger, c.executor, c.jobs)
	if err := cronRunner.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	delivery.RegisterOps(e, c.registry)
	runHandler := delivery.NewRunHandler(c.executor, c.runRepo, appLogger)
	apiV1 := e.Group("/api/v1")
	runHandler.RegisterRoutes(apiV1.Group("/runs"))
	trendHandler := delivery.NewTrendHandler(c.trendRepo, appLogger)
	trendHandler.RegisterRoutes(apiV1.Group("/trends"))

	// Start server
	go func() {
		addr := c.cfg.API.Addr()
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down analytics service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	cronRunner.Stop()

	appLogger.Info("Analytics service stopped.")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := bootstrap()
	defer c.close()

	jobType := entity.JobType(args[0])
	if !c.executor.HasStrategy(jobType) {
		c.logger.Error("Unknown job type", logger.StringField("type", args[0]))
		return
	}

	job, ok := scheduler.FindJob(c.jobs, jobType)
	if !ok {
		job = entity.Job{Name: "manual-" + string(jobType), Type: jobType}
	}

	run, err := c.executor.Execute(ctx, &job)
	if err != nil {
		c.logger.Error("Run failed", logger.ErrorField(err))
		return
	}
	fmt.Println(run.Output.String)
	c.logger.Info("Run finished", logger.StringField("run_id", run.ID), logger.StringField("status", string(run.Status)))
}

// @title Analytics Service API
// @version 1.0
// @description Ops API for triggering analytics runs and inspecting trends.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analytics-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-analytics.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analytics-service CLI: %s\n", err)
		os.Exit(1)
	}
}
