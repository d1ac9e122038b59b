// Package conversation runs the preference interview that turns a chat into
// a set of pet matches.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/common/metrics"
	"pet-matchmaker/internal/matchmaking/intent"
	"pet-matchmaker/internal/matchmaking/preferences"
	"pet-matchmaker/internal/matchmaking/presenter"
	"pet-matchmaker/internal/matchmaking/session"
	"pet-matchmaker/internal/models"
)

const Component = "conversation"

var (
	ErrChatUnavailable = errors.New("CHAT_UNAVAILABLE")
	ErrInvalidMessage  = errors.New("INVALID_MESSAGE")
)

type Config struct {
	MaxDisplay int
}

type Dependencies struct {
	Script      *preferences.Script
	MatchIntent *intent.Classifier
	StopIntent  *intent.Classifier
	Sessions    session.Store
	Matcher     Matcher
	Catalog     Catalog
	Repository  Repository
}

type Engine struct {
	config *Config
	deps   Dependencies
	locks  *userLocks
	logger logger.Logger
}

func NewEngine(config *Config, deps Dependencies, log logger.Logger) *Engine {
	if deps.Script == nil {
		deps.Script = preferences.DefaultScript()
	}
	if deps.MatchIntent == nil {
		deps.MatchIntent = intent.NewMatchIntent()
	}
	if deps.StopIntent == nil {
		deps.StopIntent = intent.NewStopIntent()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(0)
	}
	return &Engine{
		config: config,
		deps:   deps,
		locks:  newUserLocks(),
		logger: logger.ForComponent(log, Component),
	}
}

// HandleChatTurn processes one message from userID. prior is the transcript
// the client holds; the returned TurnResult carries it extended by this turn.
// Turns for the same user are serialized.
func (e *Engine) HandleChatTurn(ctx context.Context, userID string, msg Message, prior []models.TranscriptEntry) (*TurnResult, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var (
		result *TurnResult
		err    error
	)
	switch msg.Kind {
	case KindChat, "":
		result, err = e.chatTurn(ctx, userID, msg.Text, prior)
	case KindSubmitPreferences:
		result, err = e.submitTurn(ctx, userID, msg.Preferences)
	default:
		err = fmt.Errorf("%w: unknown message kind %q", ErrInvalidMessage, msg.Kind)
	}
	if err != nil {
		metrics.ChatTurns.WithLabelValues("failed").Inc()
		return nil, err
	}

	userText := msg.Text
	if msg.Kind == KindSubmitPreferences {
		userText = submittedText(msg)
	}
	result.Transcript = models.AppendTurn(prior, userText, result.Reply)
	if err := e.deps.Repository.SaveChatTranscript(ctx, userID, result.Transcript); err != nil {
		e.logger.Warn("failed to save chat transcript", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
	return result, nil
}

func (e *Engine) chatTurn(ctx context.Context, userID, text string, prior []models.TranscriptEntry) (*TurnResult, error) {
	script := e.deps.Script
	sess, active, err := e.deps.Sessions.Get(ctx, userID)
	switch {
	case errors.Is(err, session.ErrCorruptSession):
		e.resetSession(ctx, userID, err.Error())
		active = false
	case err != nil:
		return nil, err
	case active && (sess.CurrentStep < 0 || sess.CurrentStep > script.Len()):
		e.resetSession(ctx, userID, fmt.Sprintf("step %d out of range", sess.CurrentStep))
		active = false
	}
	if !active || !sess.Collecting {
		return e.idleTurn(ctx, userID, text, prior)
	}
	if sess.Preferences == nil {
		sess.Preferences = models.UserPreferences{}
	}

	if sess.CurrentStep >= script.Len() {
		// a previous matching attempt failed after the last answer
		return e.completeInterview(ctx, userID, sess)
	}

	if e.deps.StopIntent.Detect(text) {
		e.logger.Info("interview stopped early", map[string]interface{}{
			"userId": userID,
			"step":   sess.CurrentStep,
		})
		return e.completeInterview(ctx, userID, sess)
	}

	if _, err := script.Record(sess.Preferences, sess.CurrentStep, text); err != nil {
		return nil, err
	}
	sess.CurrentStep++

	if err := e.deps.Sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	if sess.CurrentStep >= script.Len() {
		return e.completeInterview(ctx, userID, sess)
	}

	next, _ := script.At(sess.CurrentStep)
	metrics.ChatTurns.WithLabelValues("interview_answer").Inc()
	return &TurnResult{
		Reply:            next.PromptText,
		IsMatchingIntent: true,
		Interview:        &Progress{Step: sess.CurrentStep, Total: script.Len()},
	}, nil
}

// resetSession drops an unusable session so the user starts over from idle.
func (e *Engine) resetSession(ctx context.Context, userID, reason string) {
	e.logger.Warn("discarding unusable session", map[string]interface{}{
		"userId": userID,
		"reason": reason,
	})
	if err := e.deps.Sessions.Delete(ctx, userID); err != nil {
		e.logger.Warn("failed to discard session", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func (e *Engine) idleTurn(ctx context.Context, userID, text string, prior []models.TranscriptEntry) (*TurnResult, error) {
	if e.deps.MatchIntent.Detect(text) {
		if err := e.deps.Sessions.Put(ctx, userID, session.New()); err != nil {
			return nil, err
		}
		metrics.ChatTurns.WithLabelValues("interview_started").Inc()
		e.logger.Info("interview started", map[string]interface{}{"userId": userID})

		first, _ := e.deps.Script.At(0)
		return &TurnResult{
			Reply:            first.PromptText,
			IsMatchingIntent: true,
			Interview:        &Progress{Step: 0, Total: e.deps.Script.Len()},
		}, nil
	}

	reply, err := e.deps.Matcher.GetChatResponse(ctx, text, prior)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	metrics.ChatTurns.WithLabelValues("chat").Inc()
	return &TurnResult{Reply: reply}, nil
}

// completeInterview matches on whatever has been collected. The session is
// only removed once the matches are persisted, so a failed attempt can be
// retried on the next turn.
func (e *Engine) completeInterview(ctx context.Context, userID string, sess *session.ConversationSession) (*TurnResult, error) {
	pres, err := e.runMatching(ctx, userID, sess.Preferences)
	if err != nil {
		return nil, err
	}

	if err := e.deps.Sessions.Delete(ctx, userID); err != nil {
		e.logger.Warn("failed to clear completed session", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
	metrics.ChatTurns.WithLabelValues("matched").Inc()

	return &TurnResult{
		Reply:            pres.SummaryText,
		Matches:          pres.EnrichedMatches,
		IsMatchingIntent: true,
	}, nil
}

func (e *Engine) submitTurn(ctx context.Context, userID string, raw map[string]interface{}) (*TurnResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: preferences are required", ErrInvalidMessage)
	}
	prefs, dropped := e.deps.Script.Normalize(raw)
	if len(dropped) > 0 {
		e.logger.Debug("ignoring unknown preference keys", map[string]interface{}{
			"userId": userID,
			"keys":   dropped,
		})
	}

	pres, err := e.runMatching(ctx, userID, prefs)
	if err != nil {
		return nil, err
	}

	// a submitted form supersedes any interview in progress
	if _, active, err := e.deps.Sessions.Get(ctx, userID); err == nil && active {
		if err := e.deps.Sessions.Delete(ctx, userID); err != nil {
			e.logger.Warn("failed to clear superseded session", map[string]interface{}{
				"userId": userID,
				"error":  err,
			})
		}
	}
	metrics.ChatTurns.WithLabelValues("matched").Inc()

	return &TurnResult{
		Reply:            pres.SummaryText,
		Matches:          pres.EnrichedMatches,
		IsMatchingIntent: true,
	}, nil
}

// FindMatches runs matching for prefs outside of any conversation.
func (e *Engine) FindMatches(ctx context.Context, userID string, raw map[string]interface{}) ([]models.MatchResult, error) {
	prefs, _ := e.deps.Script.Normalize(raw)
	matches, _, err := e.match(ctx, userID, prefs)
	return matches, err
}

func (e *Engine) runMatching(ctx context.Context, userID string, prefs models.UserPreferences) (presenter.Presentation, error) {
	matches, pets, err := e.match(ctx, userID, prefs)
	if err != nil {
		return presenter.Presentation{}, err
	}
	return presenter.Format(matches, presenter.NewPetIndex(pets), e.config.MaxDisplay), nil
}

func (e *Engine) match(ctx context.Context, userID string, prefs models.UserPreferences) ([]models.MatchResult, []models.Pet, error) {
	pets, err := e.deps.Catalog.GetAvailablePets(ctx)
	if err != nil {
		return nil, nil, err
	}

	snapshot := prefs.Clone()
	if err := e.deps.Repository.SavePreferences(ctx, userID, snapshot); err != nil {
		return nil, nil, err
	}

	matches, err := e.deps.Matcher.FindMatches(ctx, snapshot, models.Candidates(pets))
	if err != nil {
		return nil, nil, err
	}

	if len(matches) > 0 {
		if err := e.deps.Repository.SaveMatches(ctx, userID, matches); err != nil {
			return nil, nil, err
		}
	}

	e.logger.Info("matches produced", map[string]interface{}{
		"userId":      userID,
		"preferences": len(snapshot),
		"candidates":  len(pets),
		"matches":     len(matches),
	})
	return matches, pets, nil
}

func submittedText(msg Message) string {
	if strings.TrimSpace(msg.Text) != "" {
		return msg.Text
	}
	data, err := json.Marshal(msg.Preferences)
	if err != nil {
		return "Submitted pet preferences"
	}
	return "Submitted pet preferences: " + string(data)
}
