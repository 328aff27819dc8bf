package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	appI18n "github.com/pavelanni/slackquiz/internal/i18n"
	"github.com/pavelanni/slackquiz/internal/model"
	"github.com/pavelanni/slackquiz/internal/score"
	"github.com/pavelanni/slackquiz/internal/slack"
	slackapi "github.com/slack-go/slack"
)

// Slash commands served by the webhook.
const (
	CommandQuiz        = "/awsquiz"
	CommandLeaderboard = "/leaderboard"
)

const defaultLeaderboardSize = 5

// errBadRequest marks requests whose body shape is not recognized.
var errBadRequest = errors.New("bad request")

// Verifier checks that a request was signed by Slack.
type Verifier interface {
	Verify(ctx context.Context, header http.Header, body []byte) bool
}

// QuestionSource produces a question for every quiz command.
type QuestionSource interface {
	Generate(ctx context.Context) model.Question
}

// TokenCodec turns grading state into button values and back.
type TokenCodec interface {
	Encode(t model.AnswerToken) (string, error)
	Decode(value string) (model.AnswerToken, error)
}

// Recorder records graded answers.
type Recorder interface {
	RecordAnswer(ctx context.Context, userID string, correct bool) *model.ScoreRecord
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	verifier  Verifier
	questions QuestionSource
	tokens    TokenCodec
	ledger    Recorder
	ranker    score.Ranker
	config    model.Config
}

// New creates a new Handler.
func New(v Verifier, q QuestionSource, tc TokenCodec, l Recorder, r score.Ranker, cfg model.Config) *Handler {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaultLeaderboardSize
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	return &Handler{verifier: v, questions: q, tokens: tc, ledger: l, ranker: r, config: cfg}
}

// Router returns the webhook router with its middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(localize(h.config.Lang))
	h.Routes(r)
	return r
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(h.requireSlackSignature)
		r.Post("/slack/events", h.handleEvent)
		// API Gateway proxy integrations deliver to the stage root.
		r.Post("/", h.handleEvent)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	msg, err := h.dispatch(r)
	switch {
	case errors.Is(err, errBadRequest):
		slog.Warn("bad request", "error", err)
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	case err != nil:
		slog.Error("dispatch failed", "error", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, msg)
}

func (h *Handler) dispatch(r *http.Request) (any, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/x-www-form-urlencoded" {
		return nil, fmt.Errorf("%w: content type %q", errBadRequest, r.Header.Get("Content-Type"))
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	if raw := r.PostForm.Get("payload"); raw != "" {
		return h.handleInteraction(r.Context(), raw)
	}
	cmd, err := slackapi.SlashCommandParse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	switch cmd.Command {
	case CommandQuiz:
		return h.handleQuiz(r.Context(), cmd)
	case CommandLeaderboard:
		return h.handleLeaderboard(r.Context(), cmd), nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", errBadRequest, cmd.Command)
}

func (h *Handler) handleQuiz(ctx context.Context, cmd slackapi.SlashCommand) (slackapi.Msg, error) {
	q := h.questions.Generate(ctx)
	blocks, err := slack.QuizBlocks(appI18n.T(ctx, "QuizTitle"), q, cmd.UserID, h.tokens)
	if err != nil {
		return slackapi.Msg{}, fmt.Errorf("build quiz blocks: %w", err)
	}
	slog.Debug("quiz sent", "user", cmd.UserID)
	return slack.Ephemeral("", blocks...), nil
}

func (h *Handler) handleLeaderboard(ctx context.Context, cmd slackapi.SlashCommand) slackapi.Msg {
	var b strings.Builder
	b.WriteString(appI18n.T(ctx, "LeaderboardTitle"))
	b.WriteString("\n\n")
	for _, e := range h.ranker.TopEntries(ctx, h.config.LeaderboardSize) {
		b.WriteString(appI18n.Td(ctx, "LeaderboardLine", rankData(e.Rank, e.ScoreRecord)))
		b.WriteString("\n")
	}
	if rank, rec := h.ranker.RankOf(ctx, cmd.UserID); rec != nil {
		b.WriteString("\n")
		b.WriteString(appI18n.Td(ctx, "YourRank", rankData(rank, *rec)))
	}
	return slack.Ephemeral(b.String())
}

func (h *Handler) handleInteraction(ctx context.Context, raw string) (any, error) {
	cb, action, err := slack.ParseInteraction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	label, ok := slack.LabelFromActionID(action.ActionID)
	if !ok {
		slog.Info("ignoring unknown action", "action_id", action.ActionID)
		return struct{}{}, nil
	}

	tok, err := h.tokens.Decode(action.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if string(tok.Answer) != label {
		return nil, fmt.Errorf("%w: action %s carries answer %s", errBadRequest, action.ActionID, tok.Answer)
	}

	correct := tok.IsCorrect()
	rec := h.ledger.RecordAnswer(ctx, cb.User.ID, correct)
	slog.Info("answer graded", "user", cb.User.ID, "answer", tok.Answer, "correct", correct)

	var b strings.Builder
	if correct {
		b.WriteString(appI18n.T(ctx, "AnswerCorrect"))
	} else {
		b.WriteString(appI18n.Td(ctx, "AnswerIncorrect", map[string]any{"Correct": string(tok.Correct)}))
	}
	b.WriteString("\n\n")
	b.WriteString(tok.Explanation)
	if rec != nil {
		b.WriteString("\n\n")
		b.WriteString(appI18n.Td(ctx, "ScoreLine", map[string]any{
			"Correct":  rec.Correct,
			"Total":    rec.Total,
			"Accuracy": score.FormatAccuracy(rec.Correct, rec.Total),
		}))
	}
	return slack.Replacement(b.String()), nil
}

func rankData(rank int, rec model.ScoreRecord) map[string]any {
	return map[string]any{
		"Rank":     rank,
		"UserID":   rec.UserID,
		"Correct":  rec.Correct,
		"Accuracy": score.FormatAccuracy(rec.Correct, rec.Total),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		writeInternalError(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// writeText writes a plain text body exactly as given.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, `{"error":"Internal server error"}`)
}
