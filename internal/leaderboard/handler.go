package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type topProvider interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

type Handler struct {
	service topProvider
}

func NewHandler(service topProvider) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/top", handler.handleTop).Methods("GET", "OPTIONS").Name("leaderboard-top")
}

func (handler *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "leaderboardHandler.top")
	defer span.End()

	limit := defaultTopLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsedLimit, err := strconv.Atoi(limitParam)
		if err != nil || parsedLimit < 1 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsedLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	span.SetAttributes(attribute.Int("leaderboard.limit", limit))

	entries, err := handler.service.Top(ctx, limit)
	if err != nil {
		log.Errorf("get leaderboard top %d: %s", limit, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	entriesBytes, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("marshal leaderboard entries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesBytes)
}
