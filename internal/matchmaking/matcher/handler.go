// Package matcher asks the generative model for pet matches, chat replies
// and care advice, and turns its free-form output into typed results.
package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "pet-matchmaker/internal/common/errors"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/common/metrics"
	"pet-matchmaker/internal/common/validation"
	"pet-matchmaker/internal/llm"
	"pet-matchmaker/internal/models"
)

const Component = "matcher"

var (
	ErrMatchingUnavailable    = errors.New("MATCHING_UNAVAILABLE")
	ErrMalformedMatchResponse = errors.New("MALFORMED_MATCH_RESPONSE")
)

var (
	matchSchema  = validation.MustCompile("match-response", matchResponseSchema)
	adviceSchema = validation.MustCompile("care-advice", careAdviceSchema)
)

// maxLoggedPayload bounds how much of a malformed reply is logged.
const maxLoggedPayload = 500

type Handler struct {
	config   *Config
	provider llm.Provider
	cache    *redis.Client
	logger   logger.Logger
}

// NewHandler builds a matcher. cache may be nil, in which case care advice is
// generated on every call.
func NewHandler(config *Config, provider llm.Provider, cache *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:   config.withDefaults(),
		provider: provider,
		cache:    cache,
		logger: logger.ForComponent(log, Component).With(map[string]interface{}{
			"provider": provider.Name(),
		}),
	}
}

// FindMatches scores candidates against prefs. Only results at or above the
// configured minimum that refer to a known candidate are returned, best first.
func (h *Handler) FindMatches(ctx context.Context, prefs models.UserPreferences, candidates []models.CandidatePet) ([]models.MatchResult, error) {
	if len(candidates) == 0 {
		metrics.MatchRequests.WithLabelValues("empty").Inc()
		return []models.MatchResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := h.provider.Generate(ctx, llm.Request{
		Prompt:      buildMatchingPrompt(prefs, candidates, h.config.MinScore),
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
		JSON:        true,
	})
	metrics.MatchDuration.WithLabelValues(h.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MatchRequests.WithLabelValues("unavailable").Inc()
		h.logger.Error("matching request failed", map[string]interface{}{
			"error":      err,
			"candidates": len(candidates),
		})
		return nil, fmt.Errorf("%w: %v", ErrMatchingUnavailable, err)
	}

	matches, err := h.parseMatches(text, candidates)
	if err != nil {
		metrics.MatchRequests.WithLabelValues("malformed").Inc()
		h.logger.Warn("model returned malformed matches", map[string]interface{}{
			"error":   err,
			"payload": truncate(text, maxLoggedPayload),
		})
		return nil, err
	}

	metrics.MatchRequests.WithLabelValues("success").Inc()
	h.logger.Info("matching completed", map[string]interface{}{
		"candidates": len(candidates),
		"matches":    len(matches),
	})
	return matches, nil
}

func (h *Handler) parseMatches(text string, candidates []models.CandidatePet) ([]models.MatchResult, error) {
	var raw []rawMatch
	if err := matchSchema.Decode([]byte(stripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMatchResponse, err)
	}

	known := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	matches := make([]models.MatchResult, 0, len(raw))
	for _, r := range raw {
		m := r.result()
		if m.MatchScore < h.config.MinScore {
			continue
		}
		if _, ok := known[m.PetID]; !ok {
			h.logger.Warn("dropping match for unknown pet", map[string]interface{}{
				"petId": m.PetID,
			})
			continue
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches, nil
}

// GetChatResponse answers a free-form message given the conversation so far.
func (h *Handler) GetChatResponse(ctx context.Context, message string, history []models.TranscriptEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	text, err := h.provider.Generate(ctx, llm.Request{
		Prompt:      buildChatPrompt(message, history),
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	})
	if err != nil {
		h.logger.Error("chat request failed", map[string]interface{}{
			"error":      err,
			"historyLen": len(history),
		})
		return "", fmt.Errorf("%w: %v", ErrMatchingUnavailable, err)
	}
	return text, nil
}

// GenerateCareAdvice never fails: when the model is unavailable or its reply
// cannot be parsed, FallbackCareTips are returned.
func (h *Handler) GenerateCareAdvice(ctx context.Context, petType, specificNeeds string) []string {
	key := careAdviceKey(petType, specificNeeds)
	if tips, ok := h.cachedAdvice(ctx, key); ok {
		return tips
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	text, err := h.provider.Generate(ctx, llm.Request{
		Prompt:      buildCareAdvicePrompt(petType, specificNeeds),
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return h.fallbackAdvice(petType, err)
	}

	var tips []string
	if err := adviceSchema.Decode([]byte(stripFences(text)), &tips); err != nil {
		h.logger.Warn("model returned malformed care advice", map[string]interface{}{
			"payload": truncate(text, maxLoggedPayload),
		})
		return h.fallbackAdvice(petType, err)
	}

	h.storeAdvice(ctx, key, tips)
	return tips
}

func (h *Handler) fallbackAdvice(petType string, err error) []string {
	metrics.CareAdviceFallbacks.Inc()
	se := apperrors.NewCareAdviceUnavailableError(err)
	h.logger.Warn(se.Message, map[string]interface{}{
		"petType":   petType,
		"errorCode": string(se.Code),
		"details":   se.Details,
		"retryable": se.Retryable,
	})
	out := make([]string, len(FallbackCareTips))
	copy(out, FallbackCareTips)
	return out
}

func careAdviceKey(petType, specificNeeds string) string {
	return fmt.Sprintf("care:%s:%s",
		strings.ToLower(strings.TrimSpace(petType)),
		strings.ToLower(strings.TrimSpace(specificNeeds)))
}

func (h *Handler) cachedAdvice(ctx context.Context, key string) ([]string, bool) {
	if h.cache == nil {
		return nil, false
	}
	data, err := h.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("care advice cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	var tips []string
	if err := json.Unmarshal(data, &tips); err != nil || len(tips) == 0 {
		return nil, false
	}
	return tips, true
}

func (h *Handler) storeAdvice(ctx context.Context, key string, tips []string) {
	if h.cache == nil {
		return
	}
	data, _ := json.Marshal(tips)
	if err := h.cache.Set(ctx, key, data, h.config.CareAdviceCacheTTL).Err(); err != nil {
		h.logger.Warn("care advice cache write failed", map[string]interface{}{"error": err})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
