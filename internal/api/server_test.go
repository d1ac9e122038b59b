package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-matchmaker/internal/catalog"
	apperrors "pet-matchmaker/internal/common/errors"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/matchmaking/matcher"
	"pet-matchmaker/internal/models"
)

type fakeChat struct {
	userID  string
	msg     conversation.Message
	prior   []models.TranscriptEntry
	result  *conversation.TurnResult
	matches []models.MatchResult
	err     error
}

func (f *fakeChat) HandleChatTurn(_ context.Context, userID string, msg conversation.Message, prior []models.TranscriptEntry) (*conversation.TurnResult, error) {
	f.userID, f.msg, f.prior = userID, msg, prior
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeChat) FindMatches(_ context.Context, userID string, raw map[string]interface{}) ([]models.MatchResult, error) {
	f.userID = userID
	return f.matches, f.err
}

type fakeAdvisor struct {
	petType, needs string
}

func (f *fakeAdvisor) GenerateCareAdvice(_ context.Context, petType, needs string) []string {
	f.petType, f.needs = petType, needs
	return []string{"Walk daily"}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, chat *fakeChat, checks map[string]Pinger) (*httptest.Server, *fakeAdvisor) {
	advisor := &fakeAdvisor{}
	s := NewServer(Config{}, chat, advisor, checks, nil, logger.NewTestLogger(t))
	server := httptest.NewServer(s.Router())
	t.Cleanup(server.Close)
	return server, advisor
}

func post(t *testing.T, url, user, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(DefaultUserHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestChat_Success(t *testing.T) {
	chat := &fakeChat{result: &conversation.TurnResult{
		Reply:            "What type of pet?",
		IsMatchingIntent: true,
		Interview:        &conversation.Progress{Step: 0, Total: 11},
		Transcript:       models.AppendTurn(nil, "find me a pet", "What type of pet?"),
	}}
	server, _ := newTestServer(t, chat, nil)

	resp, body := post(t, server.URL+"/api/ai/chat", "user-7",
		`{"kind":"chat","text":"find me a pet","transcript":[{"speaker":"assistant","text":"Hi!"}]}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "What type of pet?", body["response"])
	assert.Equal(t, true, body["isMatchingIntent"])
	assert.Equal(t, map[string]interface{}{"step": float64(0), "total": float64(11)}, body["interview"])
	assert.Len(t, body["transcript"], 2)
	assert.NotContains(t, body, "matches")

	assert.Equal(t, "user-7", chat.userID)
	assert.Equal(t, conversation.KindChat, chat.msg.Kind)
	require.Len(t, chat.prior, 1)
	assert.Equal(t, "Hi!", chat.prior[0].Text)
}

func TestChat_SubmitPreferences(t *testing.T) {
	chat := &fakeChat{result: &conversation.TurnResult{Reply: "Here are your top pet matches:\n\n...", IsMatchingIntent: true}}
	server, _ := newTestServer(t, chat, nil)

	resp, _ := post(t, server.URL+"/api/ai/chat", "user-7",
		`{"kind":"submitPreferences","preferences":{"livingSpace":"apartment","otherPets":"yes"}}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, conversation.KindSubmitPreferences, chat.msg.Kind)
	assert.Equal(t, "apartment", chat.msg.Preferences["livingSpace"])
}

func TestChat_CompletedWithoutMatchesHasEmptyArray(t *testing.T) {
	chat := &fakeChat{result: &conversation.TurnResult{
		Reply:            "Sorry, I couldn't find any good matches right now.",
		Matches:          []models.EnrichedMatch{},
		IsMatchingIntent: true,
	}}
	server, _ := newTestServer(t, chat, nil)

	resp, body := post(t, server.URL+"/api/ai/chat", "user-7", `{"kind":"chat","text":"stop"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "matches")
	assert.Equal(t, []interface{}{}, body["matches"])
}

func TestChat_InvalidEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `MATCH_PREFERENCES:{"a":1}`},
		{name: "unknown kind", body: `{"kind":"yell","text":"hi"}`},
		{name: "chat without text", body: `{"kind":"chat"}`},
		{name: "submit without preferences", body: `{"kind":"submitPreferences","text":"hi"}`},
		{name: "bad transcript speaker", body: `{"kind":"chat","text":"hi","transcript":[{"speaker":"robot","text":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{}
			server, _ := newTestServer(t, chat, nil)

			resp, body := post(t, server.URL+"/api/ai/chat", "user-7", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, string(apperrors.ErrCodeInvalidRequest), body["code"])
			assert.Empty(t, chat.userID)
		})
	}
}

func TestChat_RequiresUser(t *testing.T) {
	server, _ := newTestServer(t, &fakeChat{}, nil)

	resp, body := post(t, server.URL+"/api/ai/chat", "", `{"kind":"chat","text":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeUnauthenticated), body["code"])
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
		wantMsg    string
	}{
		{
			name:       "matching unavailable",
			err:        fmt.Errorf("%w: timeout", matcher.ErrMatchingUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.ErrCodeMatchingUnavailable,
			wantMsg:    apperrors.MatchingRetryMessage,
		},
		{
			name:       "malformed response",
			err:        fmt.Errorf("%w: not json", matcher.ErrMalformedMatchResponse),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.ErrCodeMalformedMatchResponse,
			wantMsg:    apperrors.MatchingRetryMessage,
		},
		{
			name:       "chat unavailable",
			err:        fmt.Errorf("%w: %v", conversation.ErrChatUnavailable, matcher.ErrMatchingUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.ErrCodeMatchingUnavailable,
			wantMsg:    apperrors.ChatRetryMessage,
		},
		{
			name:       "catalog query",
			err:        fmt.Errorf("%w: reset", catalog.ErrQueryExecutionFailed),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrCodeQueryExecutionFailed,
		},
		{
			name:       "unknown",
			err:        errors.New("kaboom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, &fakeChat{err: tt.err}, nil)

			resp, body := post(t, server.URL+"/api/ai/chat", "user-7", `{"kind":"chat","text":"hi"}`)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, string(tt.wantCode), body["code"])
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}
}

func TestMatch(t *testing.T) {
	chat := &fakeChat{matches: []models.MatchResult{{PetID: 1, MatchScore: 90, Reasoning: "great", CareAdvice: []string{"walk"}}}}
	server, _ := newTestServer(t, chat, nil)

	resp, body := post(t, server.URL+"/api/ai/match", "user-9", `{"userPreferences":{"petType":"dog"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	matches := body["matches"].([]interface{})
	require.Len(t, matches, 1)
	assert.Equal(t, float64(1), matches[0].(map[string]interface{})["petId"])
	assert.Equal(t, "user-9", chat.userID)

	resp, _ = post(t, server.URL+"/api/ai/match", "user-9", `{"prefs":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatch_EmptyIsArray(t *testing.T) {
	server, _ := newTestServer(t, &fakeChat{}, nil)

	resp, body := post(t, server.URL+"/api/ai/match", "user-9", `{"userPreferences":{}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["matches"])
}

func TestCareAdvice(t *testing.T) {
	server, advisor := newTestServer(t, &fakeChat{}, nil)

	resp, body := post(t, server.URL+"/api/ai/care-advice", "", `{"petType":"rabbit","specificNeeds":"senior"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"Walk daily"}, body["advice"])
	assert.Equal(t, "rabbit", advisor.petType)
	assert.Equal(t, "senior", advisor.needs)

	resp, _ = post(t, server.URL+"/api/ai/care-advice", "", `{"petType":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndReady(t *testing.T) {
	server, _ := newTestServer(t, &fakeChat{}, map[string]Pinger{
		"postgres": fakePinger{},
		"redis":    fakePinger{err: errors.New("connection refused")},
	})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]interface{}{"redis": "connection refused"}, body["failures"])
}

func TestGreetingAndMetrics(t *testing.T) {
	server, _ := newTestServer(t, &fakeChat{}, nil)

	resp, err := http.Get(server.URL + "/api/ai/greeting")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, conversation.Greeting, body["greeting"])

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
