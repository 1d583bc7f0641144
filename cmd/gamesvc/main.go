package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/pinelime/games-services/configs"
	"github.com/pinelime/games-services/internal/cutout"
	"github.com/pinelime/games-services/internal/gamesvc/broker"
	svcconfig "github.com/pinelime/games-services/internal/gamesvc/config"
	"github.com/pinelime/games-services/internal/gamesvc/db"
	handlers "github.com/pinelime/games-services/internal/gamesvc/handlers"
	"github.com/pinelime/games-services/internal/gamesvc/service"
	"github.com/pinelime/games-services/internal/gamesvc/store"
	nats "github.com/pinelime/games-services/internal/nats"
	"github.com/pinelime/games-services/internal/poem"
	"github.com/pinelime/games-services/internal/storage"
	"github.com/pinelime/games-services/internal/stylize"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "games"

func init() {
	config.Logging(SERVICE_NAME + "_service_" + config.CreateUniqueInstance(SERVICE_NAME))
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// pg connection
	dbpool, err := db.Connect(cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	recordStore := store.NewGameRecordStore(dbpool)
	recordService := service.NewGameRecordService(recordStore)

	registrationStore := store.NewRegistrationStore(dbpool)
	registrationService := service.NewRegistrationService(registrationStore)

	// record writes are relayed to game runtimes over NATS, best effort
	var notifier handlers.Notifier
	n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Warnf("unable to connect to NATS server, runtime notifications disabled: %v", err)
	} else {
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)
		notifier = broker.NewBroker(n.Conn)
	}

	uploader := storage.NewUploader(storage.Config{
		Region:        cfg.AWSRegion,
		AccessKey:     cfg.AWSAccessKey,
		SecretKey:     cfg.AWSSecretKey,
		DefaultBucket: cfg.DefaultBucket,
	})
	defer uploader.Close()

	cutoutClient := cutout.NewClient(cfg.CutoutAPIKey)

	var poems handlers.PoemGenerator
	if cfg.GeminiAPIKey != "" {
		gen, err := poem.NewGenerator(context.Background(), cfg.GeminiAPIKey, "")
		if err != nil {
			log.Errorf("poem generator unavailable: %v", err)
		} else {
			poems = gen
		}
	} else {
		log.Warn("GEMINI_API_KEY not set, poem generation disabled")
	}

	stylizeClient := stylize.NewClient(cfg.ReplicateAPIKey)
	poller := stylize.NewPoller(stylizeClient)
	poller.Interval = cfg.PollInterval
	poller.Deadline = cfg.PollDeadline
	pipeline := stylize.NewPipeline(stylizeClient, poller, uploader)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cfg, recordService, registrationService,
		cutoutClient, poems, pipeline, stylizeClient, notifier)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
