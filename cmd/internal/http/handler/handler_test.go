package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/domain/policy"
	"notesboard/cmd/internal/domain/sqlite"
	"notesboard/cmd/internal/domain/sqlite/repository"
	"notesboard/cmd/internal/http/middleware"
	"notesboard/cmd/internal/service"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"
	"notesboard/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	signInFn func(req *contract.SignInRequest) (*contract.SignInResponse, apierror.ErrorResponse)
}

func (f *fakeUserService) SignUp(context.Context, *contract.SignUpRequest) (*contract.MessageResponse, apierror.ErrorResponse) {
	return contract.NewMessage("User registered successfully. Please verify your account."), nil
}

func (f *fakeUserService) VerifyCode(context.Context, *contract.VerifyCodeRequest) (*contract.MessageResponse, apierror.ErrorResponse) {
	return contract.NewMessage("Account verified successfully"), nil
}

func (f *fakeUserService) SignIn(_ context.Context, req *contract.SignInRequest) (*contract.SignInResponse, apierror.ErrorResponse) {
	return f.signInFn(req)
}

func (f *fakeUserService) CheckUsername(context.Context, *contract.UsernameQuery) (*contract.MessageResponse, apierror.ErrorResponse) {
	return contract.NewMessage("Username is unique"), nil
}

type testServer struct {
	e        *echo.Echo
	sessions *utils.SessionTokens
	users    *repository.DefaultUserRepository
	notes    *repository.DefaultNoteRepository
}

func newTestServer(t *testing.T, userService UserService) *testServer {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	sessions, err := utils.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)

	ts := &testServer{
		e:        echo.New(),
		sessions: sessions,
		users:    repository.NewUserRepository(db),
		notes:    repository.NewNoteRepository(db),
	}

	noteService := service.NewNoteService(ts.notes, ts.users, nil, policy.NewNotePolicy(), validators.New())
	noteRoutes := NewNoteDefault(noteService)
	userRoutes := NewUserDefault(userService, sessions, false)
	auth := middleware.NewAuthMiddleware(&middleware.AuthMiddlewareConfig{UserRepo: ts.users, Sessions: sessions})

	ts.e.HTTPErrorHandler = HTTPErrorHandler
	api := ts.e.Group("/api")
	api.POST("/sign-up", userRoutes.SignUp)
	api.POST("/sign-in", userRoutes.SignIn)
	api.POST("/post-note", noteRoutes.PostNote, auth)
	api.GET("/get-notes", noteRoutes.GetNotes, auth)
	api.DELETE("/delete-note/:noteid", noteRoutes.DeleteNote, auth)
	return ts
}

func (ts *testServer) seedUser(t *testing.T, id int64, username string) string {
	t.Helper()
	require.NoError(t, ts.users.Create(context.Background(), &entity.User{
		ID:         id,
		Username:   username,
		Email:      username + "@example.com",
		Password:   "hash",
		IsVerified: true,
	}))

	token, _, err := ts.sessions.Issue(id, username)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return &out
}

func TestNoteRoutes_Lifecycle(t *testing.T) {
	ts := newTestServer(t, &fakeUserService{})
	token := ts.seedUser(t, 1, "alice")

	rec := ts.do(http.MethodPost, "/api/post-note", `{"username":"alice","title":"Groceries","content":"milk, eggs"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[contract.MessageResponse](t, rec)
	assert.True(t, created.Success)
	assert.Equal(t, "Note saved successfully", created.Message)

	rec = ts.do(http.MethodGet, "/api/get-notes", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[contract.NotesResponse](t, rec)
	require.Len(t, list.Notes, 1)
	assert.Equal(t, "Groceries", list.Notes[0].Title)

	path := "/api/delete-note/" + list.Notes[0].ID
	rec = ts.do(http.MethodDelete, path, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note deleted", decode[contract.MessageResponse](t, rec).Message)

	rec = ts.do(http.MethodDelete, path, "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
	notFound := decode[apierror.APIError](t, rec)
	assert.False(t, notFound.Success)
	assert.Equal(t, "Note not found or already deleted", notFound.Message)
}

func TestNoteRoutes_UnauthenticatedDeleteDoesNotMutate(t *testing.T) {
	ts := newTestServer(t, &fakeUserService{})
	ts.seedUser(t, 1, "alice")
	require.NoError(t, ts.notes.Append(context.Background(), &entity.Note{
		ID: "note-1", OwnerID: 1, Title: "Keep", Content: "me", CreatedAt: 1,
	}))

	rec := ts.do(http.MethodDelete, "/api/delete-note/note-1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/delete-note/note-1", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	notes, err := ts.notes.FindByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestNoteRoutes_PostRejections(t *testing.T) {
	ts := newTestServer(t, &fakeUserService{})
	token := ts.seedUser(t, 1, "alice")
	ts.seedUser(t, 2, "bob")

	rec := ts.do(http.MethodPost, "/api/post-note", `{"username":"bob","title":"Hi","content":"there"}`, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/post-note", `{"username":"ghost","title":"Hi","content":"Ok"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[apierror.APIError](t, rec).Message)

	rec = ts.do(http.MethodPost, "/api/post-note", `{"username":"alice",`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed JSON body", decode[apierror.APIError](t, rec).Message)

	rec = ts.do(http.MethodPost, "/api/post-note", `{"username":"alice","title":"x","content":"there"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	invalid := decode[apierror.StructuredError](t, rec)
	assert.Contains(t, invalid.Errors, "title")
}

func TestUserRoutes_SignInSetsSessionCookie(t *testing.T) {
	var ts *testServer
	users := &fakeUserService{}
	ts = newTestServer(t, users)
	ts.seedUser(t, 1, "alice")

	users.signInFn = func(req *contract.SignInRequest) (*contract.SignInResponse, apierror.ErrorResponse) {
		if req.Password != "Secret123" {
			return nil, apierror.CredentialsMismatchError
		}
		token, _, err := ts.sessions.Issue(1, "alice")
		require.NoError(t, err)
		return &contract.SignInResponse{Success: true, Message: "Signed in successfully", Token: token, Username: "alice"}, nil
	}

	rec := ts.do(http.MethodPost, "/api/sign-in", `{"identifier":"alice","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/sign-in", `{"identifier":"alice","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/get-notes", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPErrorHandler_KeepsResponseShape(t *testing.T) {
	ts := newTestServer(t, &fakeUserService{})

	rec := ts.do(http.MethodGet, "/api/unknown", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, false, (*body)["success"])
	assert.NotEmpty(t, (*body)["message"])

	rec = ts.do(http.MethodGet, "/api/sign-up", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
