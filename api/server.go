// Package api exposes the read-only ops HTTP surface: health, metrics,
// and JSON views of challenges and standings. Write operations stay on
// the chat platform.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	leaderboardservice "github.com/focus-guild/pomo-bot/app/modules/leaderboard/application"
	leaderboarddomain "github.com/focus-guild/pomo-bot/app/modules/leaderboard/domain"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ChallengeReader is the challenge-service slice the API serves.
type ChallengeReader interface {
	GetCurrentChallenge(ctx context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error)
	ListWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error)
}

// LeaderboardReader is the leaderboard-service slice the API serves.
type LeaderboardReader interface {
	WeekLeaderboard(ctx context.Context, weekID int64) (results.OperationResult, error)
	CumulativeLeaderboard(ctx context.Context, challengeID int64, uptoWeek int) (results.OperationResult, error)
	ExportChallengeWorkbook(ctx context.Context, challengeID int64, weekCount int) ([]byte, error)
}

// Server is the ops HTTP server.
type Server struct {
	http *http.Server
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(
	addr string,
	challenges ChallengeReader,
	leaderboards LeaderboardReader,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	h := &handlers{
		challenges:   challenges,
		leaderboards: leaderboards,
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/guilds/{guildID}/challenge", h.currentChallenge)
		r.Get("/weeks/{weekID}/leaderboard", h.weekLeaderboard)
		r.Get("/challenges/{challengeID}/leaderboard", h.cumulativeLeaderboard)
		r.Get("/challenges/{challengeID}/export", h.exportWorkbook)
	})

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type handlers struct {
	challenges   ChallengeReader
	leaderboards LeaderboardReader
	logger       *slog.Logger
}

type challengeView struct {
	ID        int64      `json:"id"`
	GuildID   string     `json:"guild_id"`
	Semester  int        `json:"semester"`
	Theme     string     `json:"theme"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	WeekCount int        `json:"week_count"`
	Active    bool       `json:"active"`
	Weeks     []weekView `json:"weeks"`
}

type weekView struct {
	ID               int64  `json:"id"`
	WeekNumber       int    `json:"week_number"`
	ThreadID         string `json:"thread_id,omitempty"`
	RankingPublished bool   `json:"ranking_published"`
}

type entryView struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	Pomodoro     int    `json:"pomodoro"`
	Bonus        int    `json:"bonus"`
	Scored       int    `json:"scored"`
	Goal         int    `json:"goal"`
	GoalAchieved bool   `json:"goal_achieved"`
	Messages     int    `json:"messages"`
}

func (h *handlers) currentChallenge(w http.ResponseWriter, r *http.Request) {
	guildID := sharedtypes.GuildID(chi.URLParam(r, "guildID"))
	challenge, err := h.challenges.GetCurrentChallenge(r.Context(), guildID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if challenge == nil {
		h.notFound(w, "no current challenge")
		return
	}
	weeks, err := h.challenges.ListWeeks(r.Context(), challenge.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	view := challengeView{
		ID:        challenge.ID,
		GuildID:   string(challenge.GuildID),
		Semester:  challenge.Semester,
		Theme:     challenge.Theme,
		StartDate: challenge.StartDate.Format("2006-01-02"),
		EndDate:   challenge.EndDate.Format("2006-01-02"),
		WeekCount: challenge.WeekCount,
		Active:    challenge.Active,
	}
	for _, week := range weeks {
		view.Weeks = append(view.Weeks, weekView{
			ID:               week.ID,
			WeekNumber:       week.WeekNumber,
			ThreadID:         string(week.ThreadID),
			RankingPublished: week.RankingPublished,
		})
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *handlers) weekLeaderboard(w http.ResponseWriter, r *http.Request) {
	weekID, err := strconv.ParseInt(chi.URLParam(r, "weekID"), 10, 64)
	if err != nil {
		h.badRequest(w, "weekID must be an integer")
		return
	}
	result, err := h.leaderboards.WeekLeaderboard(r.Context(), weekID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	payload, ok := result.Success.(*leaderboardservice.WeekLeaderboardPayload)
	if !ok {
		h.notFound(w, "week not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"week_id":     payload.Week.WeekID,
		"week_number": payload.Week.WeekNumber,
		"semester":    payload.Week.Semester,
		"entries":     entryViews(payload.Entries),
	})
}

func (h *handlers) cumulativeLeaderboard(w http.ResponseWriter, r *http.Request) {
	challengeID, err := strconv.ParseInt(chi.URLParam(r, "challengeID"), 10, 64)
	if err != nil {
		h.badRequest(w, "challengeID must be an integer")
		return
	}
	upto, err := strconv.Atoi(r.URL.Query().Get("upto"))
	if err != nil || upto < 1 {
		h.badRequest(w, "upto must be a positive integer")
		return
	}
	result, err := h.leaderboards.CumulativeLeaderboard(r.Context(), challengeID, upto)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	payload, ok := result.Success.(*leaderboardservice.CumulativeLeaderboardPayload)
	if !ok {
		h.badRequest(w, "leaderboard unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"challenge_id": payload.ChallengeID,
		"upto_week":    payload.UptoWeek,
		"entries":      entryViews(payload.Entries),
	})
}

func (h *handlers) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	challengeID, err := strconv.ParseInt(chi.URLParam(r, "challengeID"), 10, 64)
	if err != nil {
		h.badRequest(w, "challengeID must be an integer")
		return
	}
	weeks, err := strconv.Atoi(r.URL.Query().Get("weeks"))
	if err != nil || weeks < 1 {
		h.badRequest(w, "weeks must be a positive integer")
		return
	}
	data, err := h.leaderboards.ExportChallengeWorkbook(r.Context(), challengeID, weeks)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="challenge-%d.xlsx"`, challengeID))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func entryViews(entries []leaderboarddomain.Entry) []entryView {
	views := make([]entryView, len(entries))
	for i, entry := range entries {
		views[i] = entryView{
			Rank:         i + 1,
			UserID:       string(entry.UserID),
			Pomodoro:     entry.Pomodoro,
			Bonus:        entry.Bonus,
			Scored:       entry.Scored(),
			Goal:         entry.Goal,
			GoalAchieved: entry.GoalAchieved(),
			Messages:     entry.Messages,
		}
	}
	return views
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Response encoding failed", slog.Any("error", err))
	}
}

func (h *handlers) badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

func (h *handlers) notFound(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusNotFound)
}

func (h *handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
