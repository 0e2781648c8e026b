package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/handler"
	"github.com/ifti136/android-demo/internal/profile"
	"github.com/ifti136/android-demo/internal/services"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	ctx := context.Background()

	blobService, err := services.NewBlobService()
	if err != nil {
		slog.Error("Failed to init BlobService", "error", err)
		os.Exit(1)
	}

	userStore, err := services.NewUserStore(ctx)
	if err != nil {
		slog.Error("Failed to init UserStore", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService()
	if err != nil {
		slog.Error("Failed to init QueueService", "error", err)
		os.Exit(1)
	}

	tokens, err := services.NewTokenService()
	if err != nil {
		slog.Error("Failed to init TokenService", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Blob:             blobService,
		Queue:            queueService,
		ExportsContainer: os.Getenv("EXPORTS_CONTAINER"),
		ImportQueue:      os.Getenv("IMPORT_QUEUE"),
		AdminEmails:      splitList(os.Getenv("ADMIN_EMAIL")),
	}

	// A nil *EmailService must not end up inside the interface.
	if emailService, err := services.NewEmailService(nil); err != nil {
		slog.Warn("Failed to init EmailService (continuing without digest)", "error", err)
	} else {
		deps.Email = emailService
	}

	profiles := profile.NewService(services.NewUserDataStore(blobService), userStore)
	deps.Profiles = profiles
	deps.Auth = auth.NewService(userStore, services.NewPasswordHasher(), tokens, profiles)

	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)
	if err := http.ListenAndServe(":"+port, loggingMiddleware(deps.Routes())); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}
