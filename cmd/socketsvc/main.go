package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/bingo-match/configs"
	"github.com/avvvet/bingo-match/internal/comm"
	natscli "github.com/avvvet/bingo-match/internal/nats"
	"github.com/avvvet/bingo-match/internal/socketsvc/broker"
	"github.com/avvvet/bingo-match/internal/socketsvc/routes"
	"github.com/avvvet/bingo-match/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

type socketConfig struct {
	Port      string `env:"SOCKET_SERVICE_PORT" envDefault:"8081"`
	RateLimit int    `env:"RATE_LIMIT" envDefault:"100"`
	JWTSecret string `env:"JWT_SECRET_KEY"`
	NatsURL   string `env:"NATS_URL"`
	NatsToken string `env:"NATS_TOKEN"`

	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

func main() {
	config.LoadEnv(SERVICE_NAME)

	var cfg socketConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId := config.NewInstanceID()
	if err := config.Logging(config.LogDir, SERVICE_NAME+"_service_"+instanceId, cfg.LogLevel); err != nil {
		log.Fatalf("Unable to start logging: %v", err)
	}

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME+"_"+instanceId, cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.RequestLogger())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	s := ws.NewWs()
	b := broker.NewBroker(n.Conn, s.Send)
	s.Broker = b

	routes.SetRoutes(r, s, jwtauth.New("HS256", []byte(cfg.JWTSecret), nil), cfg.Port)

	// relay match service events to sockets
	sub, err := b.Subscribe(n.Conn, comm.GameTopic)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", comm.GameTopic, err)
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
