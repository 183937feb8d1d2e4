package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/ingest"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/processor"
	"github.com/mauv0809/ndv-elo/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// ComputeHandler runs a rating pass. The season query parameter overrides
// the configured season.
func (s *Server) ComputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			season = s.Cfg.Season
		}
		s.compute(r.Context(), w, processor.Options{Season: season, DryRun: isDryRunFromContext(r)})
	}
}

// PubSubComputeHandler runs a rating pass requested through a Pub/Sub push
// subscription.
func (s *Server) PubSubComputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received compute message", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		decode := pubsub.Decode
		if s.pubsub != nil {
			decode = s.pubsub.ProcessMessage
		}
		var req pubsub.ComputeRequest
		if err := decode(rawData, &req); err != nil {
			log.Error("Failed to decode compute request", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		if req.Season == "" {
			req.Season = s.Cfg.Season
		}
		s.compute(r.Context(), w, processor.Options{Season: req.Season, DryRun: req.DryRun || isDryRunFromContext(r)})
	}
}

// compute runs a pass, publishes it and records the persistent counters.
// Players without a competition do not fail the request.
func (s *Server) compute(ctx context.Context, w http.ResponseWriter, opts processor.Options) {
	summary, err := s.Processor.ComputeRatings(ctx, opts)
	resp := computeResponse{Summary: summary}
	if err != nil {
		if !errors.Is(err, processor.ErrMissingContext) {
			log.Error("Rating pass failed", "error", err, "runID", summary.RunID)
			http.Error(w, "Rating pass failed", http.StatusInternalServerError)
			return
		}
		log.Warn("Rating pass finished with players missing a competition", "count", len(summary.MissingContext))
		resp.Warning = err.Error()
	}

	s.Processor.Publish(summary, opts.DryRun)
	if !opts.DryRun && s.MetricsStore != nil {
		for key, delta := range summary.Counters() {
			s.MetricsStore.Add(key, delta)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ImportHandler loads a crawled payload. With dry_run the payload is only
// validated.
func (s *Server) ImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		payload, err := ingest.Decode(r.Body)
		if err != nil {
			log.Warn("Rejected import payload", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Payload is valid, skipping import", "competitions", len(payload.Competitions))
			respondJSON(w, http.StatusOK, ingest.ImportSummary{})
			return
		}
		summary, err := s.Importer.Import(r.Context(), payload)
		if err != nil {
			log.Error("Import failed", "error", err)
			http.Error(w, "Import failed", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

// StatsHandler returns the counters accumulated over all passes.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MetricsStore == nil {
			respondJSON(w, http.StatusOK, map[string]int{})
			return
		}
		counters, err := s.MetricsStore.GetAll()
		if err != nil {
			log.Error("Failed to get counters", "error", err)
			http.Error(w, "Failed to get counters", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, counters)
	}
}

// LeaderboardHandler serves the ranking of one competition.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		competitionID, err := queryID(r, "competition")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := s.Store.GetCompetition(r.Context(), competitionID); err != nil {
			respondStoreError(w, err, "Failed to get competition")
			return
		}
		entries, err := s.Store.Leaderboard(r.Context(), competitionID)
		if err != nil {
			log.Error("Failed to get leaderboard", "error", err, "competitionID", competitionID)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

// PlayerRatingsHandler serves every rating of one player.
func (s *Server) PlayerRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := queryID(r, "player")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		player, err := s.Store.GetPlayer(r.Context(), playerID)
		if err != nil {
			respondStoreError(w, err, "Failed to get player")
			return
		}
		ratings, err := s.Store.PlayerRatings(r.Context(), playerID)
		if err != nil {
			log.Error("Failed to get player ratings", "error", err, "playerID", playerID)
			http.Error(w, "Failed to get player ratings", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, playerRatingsResponse{Player: player, Ratings: ratings})
	}
}

// HeadToHeadHandler lists the singles played between two players.
func (s *Server) HeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := queryID(r, "a")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, err := queryID(r, "b")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		games, err := s.Store.HeadToHead(r.Context(), a, b)
		if err != nil {
			log.Error("Failed to get head to head", "error", err, "a", a, "b", b)
			http.Error(w, "Failed to get head to head", http.StatusInternalServerError)
			return
		}
		if games == nil {
			games = []league.SinglesGame{}
		}
		respondJSON(w, http.StatusOK, games)
	}
}

// PredictHandler estimates the outcome of a game between two lineups.
func (s *Server) PredictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		competitionID, err := queryID(r, "competition")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		home, err := queryIDs(r, "home")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		away, err := queryIDs(r, "away")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prediction, err := s.Processor.Predict(r.Context(), competitionID, home, away)
		if errors.Is(err, processor.ErrInvalidLineup) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error("Failed to predict", "error", err)
			http.Error(w, "Failed to predict", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, prediction)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack
// command. The command text names a competition id, the newest competition
// is used when it is empty.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		log.Info("Received leaderboard command", "user", cmd.UserName, "text", cmd.Text)

		competition, err := s.commandCompetition(r.Context(), strings.TrimSpace(cmd.Text))
		if err != nil {
			respondStoreError(w, err, "Failed to get competition")
			return
		}
		entries, err := s.Store.Leaderboard(r.Context(), competition.ID)
		if err != nil {
			log.Error("Failed to get leaderboard", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		msg, err := s.Notifier.FormatLeaderboardResponse(competition, entries)
		if err != nil {
			log.Error("Failed to format leaderboard", "error", err)
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, msg)
	}
}

func (s *Server) commandCompetition(ctx context.Context, text string) (league.Competition, error) {
	if text != "" {
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return league.Competition{}, fmt.Errorf("competition %q: %w", text, league.ErrNotFound)
		}
		return s.Store.GetCompetition(ctx, id)
	}
	competitions, err := s.Store.Competitions(ctx)
	if err != nil {
		return league.Competition{}, err
	}
	if len(competitions) == 0 {
		return league.Competition{}, fmt.Errorf("no competitions: %w", league.ErrNotFound)
	}
	return competitions[0], nil
}

func queryID(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("missing %q parameter", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %s", key, raw)
	}
	return id, nil
}

// queryIDs reads a comma separated id list such as home=1,2.
func queryIDs(r *http.Request, key string) ([]int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, fmt.Errorf("missing %q parameter", key)
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %q parameter: %s", key, raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func respondStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, league.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Error(msg, "error", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
