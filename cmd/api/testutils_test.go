package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"flix/internal/auth"
	"flix/internal/data"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubMovies struct {
	movies []*data.Movie
}

func (s *stubMovies) GetAll(ctx context.Context) ([]*data.Movie, error) {
	return s.movies, nil
}

func (s *stubMovies) GetByTitle(ctx context.Context, title string) (*data.Movie, error) {
	for _, movie := range s.movies {
		if movie.Title == title {
			return movie, nil
		}
	}
	return nil, data.ErrNoRecordFound
}

func (s *stubMovies) GetGenre(ctx context.Context, name string) (*data.Genre, error) {
	for _, movie := range s.movies {
		if movie.Genre.Name == name {
			return &movie.Genre, nil
		}
	}
	return nil, data.ErrNoRecordFound
}

func (s *stubMovies) GetDirector(ctx context.Context, name string) (*data.Director, error) {
	for _, movie := range s.movies {
		if movie.Director.Name == name {
			return &movie.Director, nil
		}
	}
	return nil, data.ErrNoRecordFound
}

type stubUsers struct {
	mu      sync.Mutex
	users   map[string]*data.User
	inserts int
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: make(map[string]*data.User)}
}

func (s *stubUsers) Insert(ctx context.Context, user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if _, exists := s.users[user.Username]; exists {
		return data.ErrDuplicateUsername
	}
	user.ID = primitive.NewObjectID()
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []data.MovieID{}
	}
	s.users[user.Username] = user
	return nil
}

func (s *stubUsers) GetAll(ctx context.Context) ([]*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []*data.User{}
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[username]
	if !exists {
		return nil, data.ErrNoRecordFound
	}
	return user, nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID.Hex() == id {
			return user, nil
		}
	}
	return nil, data.ErrNoRecordFound
}

func (s *stubUsers) Update(ctx context.Context, username string, user *data.User) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[username]
	if !exists {
		return nil, data.ErrNoRecordFound
	}
	existing.Username = user.Username
	existing.Password = user.Password
	existing.Email = user.Email
	existing.Birthday = user.Birthday
	if existing.Username != username {
		delete(s.users, username)
		s.users[existing.Username] = existing
	}
	return existing, nil
}

func (s *stubUsers) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; !exists {
		return data.ErrNoRecordFound
	}
	delete(s.users, username)
	return nil
}

func (s *stubUsers) AddFavorite(ctx context.Context, username string, movieID data.MovieID) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[username]
	if !exists {
		return nil, data.ErrNoRecordFound
	}
	for _, id := range user.FavoriteMovies {
		if id == movieID {
			return nil, data.ErrDuplicateFavorite
		}
	}
	user.FavoriteMovies = append(user.FavoriteMovies, movieID)
	return user, nil
}

func (s *stubUsers) RemoveFavorite(ctx context.Context, username string, movieID data.MovieID) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[username]
	if !exists {
		return nil, data.ErrNoRecordFound
	}
	kept := []data.MovieID{}
	for _, id := range user.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	user.FavoriteMovies = kept
	return user, nil
}

type testServer struct {
	app    *application
	echo   *echo.Echo
	movies *stubMovies
	users  *stubUsers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	movies := &stubMovies{}
	users := newStubUsers()
	models := data.Models{Movies: movies, Users: users}
	tokens := auth.NewTokens([]byte("test-secret"))

	app := &application{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: models,
		tokens: tokens,
		local:  &auth.Local{Users: users},
		bearer: &auth.Bearer{Tokens: tokens, Users: users},
	}

	e := echo.New()
	e.HTTPErrorHandler = customHTTPErrorHandler
	e.Use(app.CustomRecover())
	e.Use(app.Authenticate())
	app.routes(e)

	return &testServer{app: app, echo: e, movies: movies, users: users}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

// seedUser inserts a user directly into the stub store and returns a valid
// bearer token for it.
func (ts *testServer) seedUser(t *testing.T, username, password string) (*data.User, string) {
	t.Helper()

	user := &data.User{
		Username:       username,
		Email:          username + "@example.com",
		FavoriteMovies: []data.MovieID{},
	}
	if err := user.SetPassword(password); err != nil {
		t.Fatal(err)
	}
	if err := ts.users.Insert(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	ts.users.inserts--

	token, err := ts.app.tokens.Issue(user.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	return user, token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func favoritesOf(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()

	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no user object: %v", body)
	}
	favorites, ok := user["FavoriteMovies"].([]interface{})
	if !ok {
		t.Fatalf("user has no FavoriteMovies list: %v", user)
	}
	return favorites
}
