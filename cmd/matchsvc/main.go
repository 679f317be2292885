package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/bingo-match/configs"
	"github.com/avvvet/bingo-match/internal/account"
	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/db"
	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/avvvet/bingo-match/internal/matchsvc/broker"
	svcconfig "github.com/avvvet/bingo-match/internal/matchsvc/config"
	"github.com/avvvet/bingo-match/internal/matchsvc/handlers"
	natscli "github.com/avvvet/bingo-match/internal/nats"
	"github.com/avvvet/bingo-match/internal/stats"
)

const SERVICE_NAME = "match"

func main() {
	config.LoadEnv(SERVICE_NAME)

	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId := config.NewInstanceID()
	if err := config.Logging(config.LogDir, SERVICE_NAME+"_service_"+instanceId, cfg.LogLevel); err != nil {
		log.Fatalf("Unable to start logging: %v", err)
	}
	log.Infof("%s service instance %s starting", SERVICE_NAME, instanceId)

	engineCfg, err := cfg.Engine()
	if err != nil {
		log.Fatalf("Invalid match configuration: %v", err)
	}

	// pg connection
	dbpool, err := db.Connect(cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")
	ledger := account.NewLedger(dbpool)

	// player statistics live in mongo, in memory when no uri is set
	var statsStore stats.Recorder = stats.NewMemory()
	if cfg.MongoURI != "" {
		mdb, err := db.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer db.DisconnectMongo(mdb)
		ms := stats.NewMongo(mdb, cfg.StatsCollection)
		if err := ms.EnsureIndexes(context.Background()); err != nil {
			log.Warnf("unable to create stats indexes: %v", err)
		}
		statsStore = ms
	} else {
		log.Warn("MONGODB_URI not set, player statistics are kept in memory")
	}

	manager := engine.NewManager(engineCfg, func(userID int64) account.Account {
		return ledger.For(userID)
	}, statsStore)
	defer manager.Close()

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME+"_"+instanceId, cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn, manager, engineCfg.AccountTimeout*2)
	sub, err := b.SubscribeSocketService(n.Conn, comm.SocketTopic)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", comm.SocketTopic, err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	h := handlers.NewHandler(manager, statsStore, cfg.Port)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sub.Unsubscribe()
	manager.Close()
	b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
