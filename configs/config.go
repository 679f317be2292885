package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// LogDir holds one log file per service instance.
const LogDir = ".l_g"

// LoadEnv loads ./.env when present. Variables already set in the
// environment win over the file.
func LoadEnv(service string) {
	err := godotenv.Load("./.env")
	switch {
	case err == nil:
		log.Infof("%s service: .env file loaded", service)
	case os.IsNotExist(err):
		log.Infof("%s service: no .env file, using process environment", service)
	default:
		log.Fatalf("Error loading .env file: %v", err)
	}
}

// NewInstanceID names one running copy of a service.
func NewInstanceID() string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("error generating instance id: %s", err)
	}
	return id.String()
}

// Logging sends logrus output to dir/<name>.log at the given level.
func Logging(dir, name, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log folder: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(file)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(lvl)
	log.Infof("log to file started for %s", name)
	return nil
}

func CORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// RequestLogger logs one line per request with its chi request id.
func RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := log.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Error("request failed")
				return
			}
			entry.Info("request")
		})
	}
}
