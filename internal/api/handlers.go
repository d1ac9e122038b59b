package api

import (
	"context"
	"net/http"
	"time"

	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, chatRequestSchema, &req) {
		return
	}

	userID := userFrom(r.Context())
	result, err := s.chat.HandleChatTurn(r.Context(), userID, conversation.Message{
		Kind:        req.Kind,
		Text:        req.Text,
		Preferences: req.Preferences,
	}, req.Transcript)
	if err != nil {
		s.errors.WriteError(w, r, toStandardError(err).WithMetadata("userId", userID))
		return
	}

	transcript := result.Transcript
	if transcript == nil {
		transcript = []models.TranscriptEntry{}
	}
	resp := chatResponse{
		Response:         result.Reply,
		IsMatchingIntent: result.IsMatchingIntent,
		Interview:        result.Interview,
		Transcript:       transcript,
	}
	if result.Matches != nil {
		resp.Matches = &result.Matches
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, matchRequestSchema, &req) {
		return
	}

	userID := userFrom(r.Context())
	matches, err := s.chat.FindMatches(r.Context(), userID, req.UserPreferences)
	if err != nil {
		s.errors.WriteError(w, r, toStandardError(err).WithMetadata("userId", userID))
		return
	}
	if matches == nil {
		matches = []models.MatchResult{}
	}
	writeJSON(w, http.StatusOK, matchResponse{Matches: matches})
}

func (s *Server) handleCareAdvice(w http.ResponseWriter, r *http.Request) {
	var req careAdviceRequest
	if !s.decode(w, r, careAdviceRequestSchema, &req) {
		return
	}
	writeJSON(w, http.StatusOK, careAdviceResponse{
		Advice: s.advisor.GenerateCareAdvice(r.Context(), req.PetType, req.SpecificNeeds),
	})
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, greetingResponse{Greeting: conversation.Greeting})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.ReadyTimeout)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
