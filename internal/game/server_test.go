package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/codebreaker/internal/auth"
	"example.com/codebreaker/internal/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVerifier struct{}

func (testVerifier) Verify(token string) (*auth.Claims, error) {
	switch token {
	case "good":
		return &auth.Claims{UserID: "u1", DisplayName: "Alice"}, nil
	case "other":
		return &auth.Claims{UserID: "u2", DisplayName: "Bob"}, nil
	}
	return nil, errors.New("bad token")
}

type apiClient struct {
	t  *testing.T
	ts *httptest.Server
}

func newAPI(t *testing.T) (*apiClient, *SessionService) {
	t.Helper()
	cfg := Config{Source: code.NewSequenceSource(1, 2, 3, 4, 5, 6, 7, 8, 9, 0)}
	svc := NewSessionService(cfg, NewInMemorySessionStore(), nil, nil)
	srv := NewServer(cfg, svc, testVerifier{}, nil)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &apiClient{t: t, ts: ts}, svc
}

func (c *apiClient) do(method, path, token string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.ts.URL+path, &buf)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *apiClient) create(token string, settings *Settings) string {
	c.t.Helper()
	var created createResponse
	var body any
	if settings != nil {
		body = settings
	}
	status := c.do(http.MethodPost, "/api/games", token, body, &created)
	require.Equal(c.t, http.StatusCreated, status)
	require.True(c.t, validSessionID(created.SessionID), "session id %q", created.SessionID)
	return created.SessionID
}

func TestServer_PlayThrough(t *testing.T) {
	api, _ := newAPI(t)
	id := api.create("", nil)

	var st StatePayload
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/games/"+id, "", nil, &st))
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, "0123456789", st.Symbols)

	var gr guessResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/games/"+id+"/guesses", "", SubmitGuessPayload{Guess: "1123"}, &gr))
	assert.Equal(t, 3, gr.Attempt.SymbolMatches)
	assert.Equal(t, 1, gr.Attempt.PositionMatches)
	assert.Equal(t, 1, gr.State.Score)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/games/"+id+"/guesses", "", SubmitGuessPayload{Guess: "1234"}, &gr))
	assert.Equal(t, PhaseFinished, gr.State.Phase)
	assert.Equal(t, "You win in 2 guesses!", gr.State.Message)
	assert.Equal(t, "1234", gr.State.Secret)

	var e ErrorPayload
	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/games/"+id+"/guesses", "", SubmitGuessPayload{Guess: "1234"}, &e))
	assert.Equal(t, "game_finished", e.Code)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/games/"+id+"/reset", "", nil, &st))
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Empty(t, st.History)
}

func TestServer_Errors(t *testing.T) {
	api, _ := newAPI(t)
	id := api.create("", nil)

	cases := []struct {
		name     string
		method   string
		path     string
		token    string
		body     any
		wantCode int
		wantErr  string
	}{
		{name: "settings alphabet too small", method: http.MethodPost, path: "/api/games/" + id + "/settings", body: Settings{Length: 5, AlphabetSize: 3}, wantCode: 422, wantErr: "alphabet_too_small"},
		{name: "settings zero length", method: http.MethodPost, path: "/api/games/" + id + "/settings", body: Settings{Length: 0, AlphabetSize: 3}, wantCode: 422, wantErr: "invalid_length"},
		{name: "settings alphabet too large", method: http.MethodPost, path: "/api/games/" + id + "/settings", body: Settings{Length: 4, AlphabetSize: 77}, wantCode: 422, wantErr: "invalid_alphabet_size"},
		{name: "settings bad json", method: http.MethodPost, path: "/api/games/" + id + "/settings", body: "nope", wantCode: 400, wantErr: "bad_json"},
		{name: "guess too short", method: http.MethodPost, path: "/api/games/" + id + "/guesses", body: SubmitGuessPayload{Guess: "12"}, wantCode: 422, wantErr: "guess_length_mismatch"},
		{name: "guess bad symbol", method: http.MethodPost, path: "/api/games/" + id + "/guesses", body: SubmitGuessPayload{Guess: "12z4"}, wantCode: 422, wantErr: "symbol_not_in_alphabet"},
		{name: "unknown session", method: http.MethodGet, path: "/api/games/unknown", wantCode: 404, wantErr: "not_found"},
		{name: "invalid session id", method: http.MethodGet, path: "/api/games/ABC", wantCode: 400, wantErr: "bad_request"},
		{name: "bad token", method: http.MethodGet, path: "/api/games/" + id, token: "bad", wantCode: 401, wantErr: "unauthorized"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e ErrorPayload
			status := api.do(tc.method, tc.path, tc.token, tc.body, &e)
			assert.Equal(t, tc.wantCode, status)
			assert.Equal(t, tc.wantErr, e.Code)
		})
	}

	// rejected settings leave the game untouched
	var st StatePayload
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/games/"+id, "", nil, &st))
	assert.Equal(t, DefaultSettings(), st.Settings)
	assert.Empty(t, st.History)
}

func TestServer_CreateWithSettings(t *testing.T) {
	api, _ := newAPI(t)
	id := api.create("", &Settings{Length: 6, AlphabetSize: 26})

	var st StatePayload
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/games/"+id, "", nil, &st))
	assert.Equal(t, 6, st.Settings.Length)
	assert.Equal(t, "0123456789abcdefghijklmnop", st.Symbols)

	var e ErrorPayload
	require.Equal(t, 422, api.do(http.MethodPost, "/api/games", "", Settings{Length: 5, AlphabetSize: 3}, &e))
	assert.Equal(t, "alphabet_too_small", e.Code)
}

func TestServer_OwnedSession(t *testing.T) {
	api, svc := newAPI(t)
	id := api.create("good", nil)

	sess, ok, err := svc.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", sess.Owner())

	var st StatePayload
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/games/"+id, "good", nil, &st))

	var e ErrorPayload
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/games/"+id+"/resign", "other", nil, &e))
	assert.Equal(t, "forbidden", e.Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/games/"+id, "", nil, &e))

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/games/"+id+"/resign", "good", nil, &st))
	assert.Equal(t, "The secret word was 1234. You lost after 0 guesses.", st.Message)
}

func TestServer_Delete(t *testing.T) {
	api, _ := newAPI(t)
	id := api.create("", nil)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/games/"+id, "", nil, nil))
	var e ErrorPayload
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/games/"+id, "", nil, &e))
}
