package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jokes-api/internal/config"
	"jokes-api/internal/db"
	"jokes-api/internal/testutil"
	"jokes-api/pkg/utils"
)

const (
	creatorID  = config.DefaultCreatorID
	reassignID = config.DefaultReassignID
)

type fixture struct {
	store   *db.Store
	handler http.Handler
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = testutil.Config()
	}
	store := testutil.OpenStore(t)
	srv := New(cfg, store, zaptest.NewLogger(t))
	return &fixture{store: store, handler: srv.Routes()}
}

// seedCreators inserts the two placeholder creators.
func (f *fixture) seedCreators(t *testing.T) {
	t.Helper()
	testutil.SeedUser(t, f.store, creatorID, "creator")
	testutil.SeedUser(t, f.store, reassignID, "reassigned")
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type userResponse struct {
	User *db.User `json:"user"`
}

type jokeResponse struct {
	Joke *db.Joke `json:"joke"`
}

type postResponse struct {
	Post *db.Post `json:"post"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func TestCreateThenGetUser(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/user", `{"name":"David","email":"david@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[userResponse](t, rec).User
	require.NotNil(t, created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, db.RoleBasic, created.Role)

	rec = f.do(t, http.MethodGet, "/user/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[userResponse](t, rec).User
	require.NotNil(t, got)
	assert.Equal(t, "David", got.Name)
	assert.Equal(t, "david@example.com", got.Email)
}

func TestGetMissingReturnsNull(t *testing.T) {
	f := newFixture(t, nil)

	for path, key := range map[string]string{
		"/user/missing": "user",
		"/joke/missing": "joke",
		"/post/missing": "post",
	} {
		rec := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"`+key+`":null}`, rec.Body.String(), path)
	}
}

func TestDeleteMissingReturns404(t *testing.T) {
	f := newFixture(t, nil)

	for path, msg := range map[string]string{
		"/user/missing": "no user found",
		"/joke/missing": "no joke found",
		"/post/missing": "no post found",
	} {
		rec := f.do(t, http.MethodDelete, path, "")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, msg, decode[messageResponse](t, rec).Message)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t, nil)
	u := testutil.SeedUser(t, f.store, "u-1", "gone")

	rec := f.do(t, http.MethodDelete, "/user/"+u.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, decode[userResponse](t, rec).User.ID)

	rec = f.do(t, http.MethodGet, "/user/"+u.ID, "")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestDeleteUserOwningPostsConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/post", `{"title":"t"}`).Code)

	rec := f.do(t, http.MethodDelete, "/user/"+creatorID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, decode[messageResponse](t, rec).Message)
}

func TestBulkDeleteUsersOwningContentConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/joke", `{"text":"still here"}`).Code)

	rec := f.do(t, http.MethodDelete, "/users", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "user conflicts with existing data", decode[messageResponse](t, rec).Message)

	rec = f.do(t, http.MethodGet, "/users", "")
	users := decode[struct {
		Users []db.User `json:"users"`
	}](t, rec).Users
	assert.Len(t, users, 2)
}

func TestUserAssociationsAlwaysPresentWhenLoaded(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	rec := f.do(t, http.MethodGet, "/user/"+creatorID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[map[string]map[string]json.RawMessage](t, rec)["user"]
	assert.Equal(t, "[]", string(user["posts"]))
	assert.Equal(t, "[]", string(user["jokes"]))

	rec = f.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[map[string][]map[string]json.RawMessage](t, rec)["users"]
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, "[]", string(u["posts"]))
		assert.Equal(t, "[]", string(u["jokes"]))
	}

	// a freshly created user has nothing loaded
	rec = f.do(t, http.MethodPost, "/user", `{"name":"new","email":"new@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[map[string]map[string]json.RawMessage](t, rec)["user"]
	assert.NotContains(t, created, "posts")
	assert.NotContains(t, created, "jokes")
}

func TestCreatePostUsesFixedCreator(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	body := `{"title":"Hello","content":"World","userId":"` + reassignID + `","creator":{"id":"` + reassignID + `"}}`
	rec := f.do(t, http.MethodPost, "/post", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	post := decode[postResponse](t, rec).Post
	require.NotNil(t, post)
	assert.Equal(t, creatorID, post.UserID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Content)
	assert.False(t, post.Published)
}

func TestCreateJokeUsesFixedCreator(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	rec := f.do(t, http.MethodPost, "/joke", `{"text":"why did the gopher cross the road","userId":"`+reassignID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, creatorID, decode[jokeResponse](t, rec).Joke.UserID)
}

func TestCreateWithoutCreatorConflicts(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/joke", `{"text":"nobody to own me"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateJokeReassignsCreator(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	rec := f.do(t, http.MethodPost, "/joke", `{"text":"old"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	joke := decode[jokeResponse](t, rec).Joke
	require.Equal(t, creatorID, joke.UserID)

	rec = f.do(t, http.MethodPut, "/joke/"+joke.ID, `{"text":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[jokeResponse](t, rec).Joke
	assert.Equal(t, "new", updated.Text)
	assert.Equal(t, reassignID, updated.UserID)
}

func TestUpdatePostPublishesAndReassigns(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	rec := f.do(t, http.MethodPost, "/post", `{"title":"draft","content":"body"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[postResponse](t, rec).Post

	rec = f.do(t, http.MethodPut, "/post/"+post.ID, `{"title":"final"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[postResponse](t, rec).Post
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.True(t, updated.Published)
	assert.Equal(t, reassignID, updated.UserID)
}

func TestUpdateUserPartial(t *testing.T) {
	f := newFixture(t, nil)
	u := testutil.SeedUser(t, f.store, "u-1", "before")

	rec := f.do(t, http.MethodPut, "/user/"+u.ID, `{"role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[userResponse](t, rec).User
	assert.Equal(t, db.RoleAdmin, updated.Role)
	assert.Equal(t, "before", updated.Name)
	assert.Equal(t, u.Email, updated.Email)
}

func TestUpdateMissingReturns404(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	for _, path := range []string{"/user/missing", "/joke/missing", "/post/missing"} {
		rec := f.do(t, http.MethodPut, path, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestMalformedBodyReturns400(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/user", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed JSON body", decode[messageResponse](t, rec).Message)
}

func TestBulkDeleteEmptyTables(t *testing.T) {
	f := newFixture(t, nil)

	for path, key := range map[string]string{"/users": "users", "/jokes": "jokes", "/posts": "posts"} {
		rec := f.do(t, http.MethodDelete, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decode[map[string]json.RawMessage](t, rec)
		assert.Equal(t, "[]", string(body[key]), path)
		assert.Equal(t, "0", string(body["count"]), path)
	}
}

func TestBulkDeleteJokes(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)
	f.do(t, http.MethodPost, "/joke", `{"text":"one"}`)
	f.do(t, http.MethodPost, "/joke", `{"text":"two"}`)

	rec := f.do(t, http.MethodDelete, "/jokes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Message string    `json:"message"`
		Jokes   []db.Joke `json:"jokes"`
		Count   int       `json:"count"`
	}](t, rec)
	assert.Equal(t, "jokes deleted", body.Message)
	assert.Len(t, body.Jokes, 2)
	assert.Equal(t, 2, body.Count)

	rec = f.do(t, http.MethodGet, "/jokes", "")
	assert.JSONEq(t, `{"jokes":[]}`, rec.Body.String())
}

func TestListIncludesAssociations(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)
	f.do(t, http.MethodPost, "/joke", `{"text":"a joke"}`)
	f.do(t, http.MethodPost, "/post", `{"title":"a post"}`)

	rec := f.do(t, http.MethodGet, "/jokes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	jokes := decode[struct {
		Jokes []db.Joke `json:"jokes"`
	}](t, rec).Jokes
	require.Len(t, jokes, 1)
	require.NotNil(t, jokes[0].Creator)
	assert.Equal(t, creatorID, jokes[0].Creator.ID)

	rec = f.do(t, http.MethodGet, "/posts", "")
	posts := decode[struct {
		Posts []db.Post `json:"posts"`
	}](t, rec).Posts
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].Creator)
	assert.Equal(t, "creator", posts[0].Creator.Name)

	rec = f.do(t, http.MethodGet, "/users", "")
	users := decode[struct {
		Users []db.User `json:"users"`
	}](t, rec).Users
	require.Len(t, users, 2)
	for _, u := range users {
		if u.ID != creatorID {
			assert.Empty(t, u.Posts)
			continue
		}
		require.Len(t, u.Posts, 1)
		require.Len(t, u.Jokes, 1)
		require.NotNil(t, u.Jokes[0].Creator)
		assert.Equal(t, creatorID, u.Jokes[0].Creator.ID)
	}

	rec = f.do(t, http.MethodGet, "/user/"+creatorID, "")
	user := decode[userResponse](t, rec).User
	assert.Len(t, user.Posts, 1)
	assert.Len(t, user.Jokes, 1)
}

func TestCreatorToken(t *testing.T) {
	cfg := testutil.Config()
	cfg.Auth.SignKey = []byte("secret")
	f := newFixture(t, cfg)
	f.seedCreators(t)
	author := testutil.SeedUser(t, f.store, "author-1", "author")

	token, err := utils.GenerateToken(cfg.Auth.SignKey, author.ID, time.Hour)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/post", `{"title":"mine"}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := decode[postResponse](t, rec).Post
	assert.Equal(t, author.ID, post.UserID)

	rec = f.do(t, http.MethodPut, "/post/"+post.ID, `{}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, author.ID, decode[postResponse](t, rec).Post.UserID)

	forged, err := utils.GenerateToken([]byte("other"), author.ID, time.Hour)
	require.NoError(t, err)
	rec = f.do(t, http.MethodPost, "/joke", `{"text":"x"}`, "Authorization", "Bearer "+forged)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID, decode[jokeResponse](t, rec).Joke.UserID)

	rec = f.do(t, http.MethodPost, "/joke", `{"text":"y"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID, decode[jokeResponse](t, rec).Joke.UserID)
}

func TestRenderPost(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCreators(t)

	rec := f.do(t, http.MethodPost, "/post", `{"title":"md","content":"# Title\n\n**bold**"}`)
	post := decode[postResponse](t, rec).Post

	rec = f.do(t, http.MethodGet, "/post/"+post.ID+"/html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Post *db.Post `json:"post"`
		HTML string   `json:"html"`
	}](t, rec)
	assert.Equal(t, post.ID, body.Post.ID)
	assert.Contains(t, body.HTML, "<strong>bold</strong>")

	rec = f.do(t, http.MethodGet, "/post/missing/html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderPostFollowsMarkdownConfig(t *testing.T) {
	for _, hardWraps := range []bool{true, false} {
		cfg := testutil.Config()
		cfg.Markdown.HardWraps = hardWraps
		f := newFixture(t, cfg)
		f.seedCreators(t)

		rec := f.do(t, http.MethodPost, "/post", `{"title":"wrap","content":"one\ntwo"}`)
		post := decode[postResponse](t, rec).Post

		rec = f.do(t, http.MethodGet, "/post/"+post.ID+"/html", "")
		require.Equal(t, http.StatusOK, rec.Code)
		html := decode[struct {
			HTML string `json:"html"`
		}](t, rec).HTML
		assert.Equal(t, hardWraps, strings.Contains(html, "<br>"), html)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	f.do(t, http.MethodGet, "/users", "")
	rec = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{code="200",method="GET",route="/users"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no route found", decode[messageResponse](t, rec).Message)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testutil.Config()
	cfg.Server.MaxConns = 4
	srv := New(cfg, testutil.OpenStore(t), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
