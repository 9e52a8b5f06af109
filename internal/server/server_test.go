package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/austinzumbro/nosql-social-api/internal/bootstrap"
	"github.com/austinzumbro/nosql-social-api/internal/config"
	"github.com/austinzumbro/nosql-social-api/internal/database"
	"github.com/austinzumbro/nosql-social-api/internal/featureflags"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func newTestApp(t *testing.T, flags string) *fiber.App {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	rt := bootstrap.NewSQLRuntime(db, nil, featureflags.NewManager(flags))
	t.Cleanup(func() { _ = rt.Close(t.Context()) })

	cfg := &config.Config{Env: "test", StoreDriver: config.DriverSQLite}
	return NewServer(cfg, rt).NewApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

type userDoc struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Thoughts     []uint `json:"thoughts"`
	Friends      []uint `json:"friends"`
	ThoughtCount int    `json:"thoughtCount"`
	FriendCount  int    `json:"friendCount"`
	CreatedAt    string `json:"createdAt"`
}

type reactionDoc struct {
	ReactionID   string `json:"reactionId"`
	ReactionBody string `json:"reactionBody"`
	Username     string `json:"username"`
	CreatedAt    string `json:"createdAt"`
}

type thoughtDoc struct {
	ID            uint          `json:"id"`
	ThoughtText   string        `json:"thoughtText"`
	Username      string        `json:"username"`
	UserID        *uint         `json:"userId"`
	Reactions     []reactionDoc `json:"reactions"`
	ReactionCount int           `json:"reactionCount"`
	CreatedAt     string        `json:"createdAt"`
}

type errorDoc struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func createUser(t *testing.T, app *fiber.App, username string) userDoc {
	t.Helper()
	status, raw := doJSON(t, app, fiber.MethodPost, "/api/users", map[string]string{
		"username": username,
		"email":    username + "@x.com",
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	return decode[userDoc](t, raw)
}

func createThought(t *testing.T, app *fiber.App, text, username string) thoughtDoc {
	t.Helper()
	status, raw := doJSON(t, app, fiber.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": text,
		"username":    username,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	return decode[struct {
		Thought thoughtDoc `json:"thought"`
	}](t, raw).Thought
}

func TestExampleFlow(t *testing.T) {
	app := newTestApp(t, "")

	ana := createUser(t, app, "ana")
	assert.NotZero(t, ana.ID)
	assert.Equal(t, []uint{}, ana.Thoughts)

	status, raw := doJSON(t, app, fiber.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": "hi",
		"username":    "ana",
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	created := decode[struct {
		Thought thoughtDoc `json:"thought"`
		User    *userDoc   `json:"user"`
	}](t, raw)
	assert.Equal(t, []reactionDoc{}, created.Thought.Reactions)
	require.NotNil(t, created.Thought.UserID)
	assert.Equal(t, ana.ID, *created.Thought.UserID)
	require.NotNil(t, created.User)
	assert.Equal(t, []uint{created.Thought.ID}, created.User.Thoughts)

	path := fmt.Sprintf("/api/thoughts/%d/reactions", created.Thought.ID)
	for i := 0; i < 2; i++ {
		status, raw = doJSON(t, app, fiber.MethodPost, path, map[string]string{"reactionBody": "lol", "username": "ana"})
		require.Equal(t, fiber.StatusOK, status, string(raw))
	}

	status, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/thoughts/%d", created.Thought.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	got := decode[thoughtDoc](t, raw)
	require.Len(t, got.Reactions, 1)
	assert.Equal(t, 1, got.ReactionCount)
	assert.Contains(t, got.CreatedAt, " at ")

	status, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/users/%d", ana.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, decode[userDoc](t, raw).ThoughtCount)
}

func TestUserErrors(t *testing.T) {
	app := newTestApp(t, "")
	createUser(t, app, "ana")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"duplicate username", fiber.MethodPost, "/api/users", map[string]string{"username": "ana", "email": "a2@x.com"}, 400, "VALIDATION_ERROR"},
		{"bad email", fiber.MethodPost, "/api/users", map[string]string{"username": "bea", "email": "nope"}, 400, "VALIDATION_ERROR"},
		{"malformed body", fiber.MethodPost, "/api/users", "{not json", 400, "VALIDATION_ERROR"},
		{"missing body", fiber.MethodPost, "/api/users", nil, 400, "VALIDATION_ERROR"},
		{"unknown user", fiber.MethodGet, "/api/users/999", nil, 404, "NOT_FOUND"},
		{"non-numeric id", fiber.MethodGet, "/api/users/abc", nil, 400, "VALIDATION_ERROR"},
		{"update unknown", fiber.MethodPut, "/api/users/999", map[string]string{"email": "z@x.com"}, 404, "NOT_FOUND"},
		{"delete unknown", fiber.MethodDelete, "/api/users/999", nil, 404, "NOT_FOUND"},
		{"friend unknown", fiber.MethodPost, "/api/users/1/friends/999", nil, 404, "NOT_FOUND"},
		{"bad expand", fiber.MethodGet, "/api/users/1?expand=maybe", nil, 400, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status, string(raw))
			e := decode[errorDoc](t, raw)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	app := newTestApp(t, "")
	status, raw := doJSON(t, app, fiber.MethodGet, "/api/thoughts/42", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No thought found with ID 42", decode[errorDoc](t, raw).Message)
}

func TestThoughtTextLength(t *testing.T) {
	app := newTestApp(t, "")
	createUser(t, app, "ana")

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": strings.Repeat("x", 281),
		"username":    "ana",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	th := createThought(t, app, strings.Repeat("x", 280), "ana")
	assert.Len(t, th.ThoughtText, 280)
}

func TestOrphanThought(t *testing.T) {
	app := newTestApp(t, "")

	status, raw := doJSON(t, app, fiber.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": "nobody home",
		"username":    "ghost",
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Contains(t, string(raw), `"user":null`)
	assert.NotContains(t, string(raw), `"userId"`)
}

func TestCreateThought_UnknownUserIDWithoutUsername(t *testing.T) {
	app := newTestApp(t, "")

	status, raw := doJSON(t, app, fiber.MethodPost, "/api/thoughts", map[string]any{
		"thoughtText": "x",
		"userId":      999,
	})
	require.Equal(t, fiber.StatusBadRequest, status, string(raw))
	assert.Equal(t, "VALIDATION_ERROR", decode[errorDoc](t, raw).Code)

	_, raw = doJSON(t, app, fiber.MethodGet, "/api/thoughts", nil)
	assert.JSONEq(t, "[]", string(raw))
}

func TestUpdateUser_PropagatesUsername(t *testing.T) {
	app := newTestApp(t, "")
	ana := createUser(t, app, "ana")
	th := createThought(t, app, "hello", "ana")

	status, raw := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/users/%d", ana.ID), map[string]string{"username": "anna"})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, "anna", decode[userDoc](t, raw).Username)

	_, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/thoughts/%d", th.ID), nil)
	assert.Equal(t, "anna", decode[thoughtDoc](t, raw).Username)
}

func TestUpdateThought(t *testing.T) {
	app := newTestApp(t, "")
	createUser(t, app, "ana")
	th := createThought(t, app, "hello", "ana")
	path := fmt.Sprintf("/api/thoughts/%d", th.ID)

	status, raw := doJSON(t, app, fiber.MethodPut, path, map[string]string{"thoughtText": "edited"})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, "edited", decode[thoughtDoc](t, raw).ThoughtText)

	status, _ = doJSON(t, app, fiber.MethodPut, path, map[string]string{"username": "mallory"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, fiber.MethodPut, path, map[string]any{"userId": 77})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeleteUser_Cascades(t *testing.T) {
	app := newTestApp(t, "")
	ana := createUser(t, app, "ana")
	bea := createUser(t, app, "bea")
	createThought(t, app, "one", "ana")
	createThought(t, app, "two", "ana")
	kept := createThought(t, app, "three", "bea")

	status, _ := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/users/%d/friends/%d", bea.ID, ana.ID), nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/users/%d", ana.ID), nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	res := decode[struct {
		DeletedUser         userDoc      `json:"deletedUser"`
		DeletedThoughts     []thoughtDoc `json:"deletedThoughts"`
		DeletedThoughtCount int          `json:"deletedThoughtCount"`
	}](t, raw)
	assert.Equal(t, "ana", res.DeletedUser.Username)
	assert.Equal(t, 2, res.DeletedThoughtCount)
	assert.Len(t, res.DeletedThoughts, 2)

	_, raw = doJSON(t, app, fiber.MethodGet, "/api/thoughts", nil)
	remaining := decode[[]thoughtDoc](t, raw)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	_, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/users/%d", bea.ID), nil)
	assert.Empty(t, decode[userDoc](t, raw).Friends)
}

func TestDeleteThought_Unlinks(t *testing.T) {
	app := newTestApp(t, "")
	ana := createUser(t, app, "ana")
	th := createThought(t, app, "bye", "ana")

	status, raw := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/thoughts/%d", th.ID), nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	res := decode[struct {
		DeletedThought thoughtDoc `json:"deletedThought"`
		User           *userDoc   `json:"user"`
	}](t, raw)
	assert.Equal(t, th.ID, res.DeletedThought.ID)
	require.NotNil(t, res.User)
	assert.Equal(t, ana.ID, res.User.ID)
	assert.Empty(t, res.User.Thoughts)

	status, _ = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/thoughts/%d", th.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestFriendsRoundTrip(t *testing.T) {
	app := newTestApp(t, "")
	ana := createUser(t, app, "ana")
	bea := createUser(t, app, "bea")
	path := fmt.Sprintf("/api/users/%d/friends/%d", ana.ID, bea.ID)

	for i := 0; i < 2; i++ {
		status, raw := doJSON(t, app, fiber.MethodPost, path, nil)
		require.Equal(t, fiber.StatusOK, status, string(raw))
		assert.Equal(t, []uint{bea.ID}, decode[userDoc](t, raw).Friends)
	}

	// directed: bea's set is untouched
	_, raw := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/users/%d", bea.ID), nil)
	assert.Empty(t, decode[userDoc](t, raw).Friends)

	for i := 0; i < 2; i++ {
		status, raw := doJSON(t, app, fiber.MethodDelete, path, nil)
		require.Equal(t, fiber.StatusOK, status, string(raw))
		assert.Equal(t, []uint{}, decode[userDoc](t, raw).Friends)
	}
}

func TestRemoveReaction(t *testing.T) {
	app := newTestApp(t, "")
	createUser(t, app, "ana")
	th := createThought(t, app, "hi", "ana")

	_, raw := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/thoughts/%d/reactions", th.ID),
		map[string]string{"reactionBody": "lol", "username": "bea"})
	reactionID := decode[thoughtDoc](t, raw).Reactions[0].ReactionID

	status, raw := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/thoughts/%d/reactions/missing", th.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[thoughtDoc](t, raw).Reactions, 1)

	status, raw = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/thoughts/%d/reactions/%s", th.ID, reactionID), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[thoughtDoc](t, raw).Reactions)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/thoughts/999/reactions/x", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/thoughts/%d/reactions", th.ID),
		map[string]string{"reactionBody": strings.Repeat("y", 281), "username": "bea"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetUser_Expand(t *testing.T) {
	type expandedDoc struct {
		Thoughts []thoughtDoc `json:"thoughts"`
		Friends  []userDoc    `json:"friends"`
	}

	app := newTestApp(t, "")
	ana := createUser(t, app, "ana")
	bea := createUser(t, app, "bea")
	createThought(t, app, "hi", "ana")
	doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/users/%d/friends/%d", ana.ID, bea.ID), nil)

	status, raw := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/users/%d?expand=true", ana.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	exp := decode[expandedDoc](t, raw)
	require.Len(t, exp.Thoughts, 1)
	assert.Equal(t, "hi", exp.Thoughts[0].ThoughtText)
	require.Len(t, exp.Friends, 1)
	assert.Equal(t, "bea", exp.Friends[0].Username)

	flagged := newTestApp(t, "expand_users=on")
	ana = createUser(t, flagged, "ana")
	createThought(t, flagged, "hi", "ana")

	_, raw = doJSON(t, flagged, fiber.MethodGet, fmt.Sprintf("/api/users/%d", ana.ID), nil)
	assert.Contains(t, string(raw), `"thoughtText":"hi"`)

	_, raw = doJSON(t, flagged, fiber.MethodGet, fmt.Sprintf("/api/users/%d?expand=false", ana.ID), nil)
	assert.NotContains(t, string(raw), `"thoughtText"`)
}

func TestListEmpty(t *testing.T) {
	app := newTestApp(t, "")
	_, raw := doJSON(t, app, fiber.MethodGet, "/api/users", nil)
	assert.JSONEq(t, `[]`, string(raw))
	_, raw = doJSON(t, app, fiber.MethodGet, "/api/thoughts", nil)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")

	status, _ := doJSON(t, app, fiber.MethodGet, "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, raw := doJSON(t, app, fiber.MethodGet, "/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Contains(t, string(raw), `"redis":"unavailable"`)

	status, _ = doJSON(t, app, fiber.MethodGet, "/no/such/route", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "user ID", humanizeParam("userId"))
	assert.Equal(t, "reaction ID", humanizeParam("reactionId"))
	assert.Equal(t, "expand", humanizeParam("expand"))
}
