package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/domain/events"
	"notesboard/cmd/internal/domain/policy"
	"notesboard/cmd/internal/domain/sqlite"
	"notesboard/cmd/internal/domain/sqlite/repository"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/uid"
	"notesboard/cmd/internal/utils/validators"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := uid.Init(1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeNotifier struct {
	mu       sync.Mutex
	notifyFn func(msg *contract.VerificationMessage) error
	sent     []*contract.VerificationMessage
}

func (f *fakeNotifier) Notify(_ context.Context, msg *contract.VerificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.notifyFn != nil {
		if err := f.notifyFn(msg); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) last(t *testing.T) *contract.VerificationMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent, "no verification message was sent")
	return f.sent[len(f.sent)-1]
}

type dispatched struct {
	userID int64
	evt    events.SocketEvent
}

type fakeDispatcher struct {
	ch chan dispatched
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{ch: make(chan dispatched, 8)}
}

func (f *fakeDispatcher) Dispatch(_ context.Context, userID int64, evt events.SocketEvent) {
	f.ch <- dispatched{userID: userID, evt: evt}
}

func (f *fakeDispatcher) next(t *testing.T) dispatched {
	t.Helper()
	select {
	case d := <-f.ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no event was dispatched")
		return dispatched{}
	}
}

type testEnv struct {
	users    *repository.DefaultUserRepository
	notes    *repository.DefaultNoteRepository
	conns    *repository.DefaultConnectionRepository
	notifier *fakeNotifier
	events   *fakeDispatcher
	userSvc  *UserService
	noteSvc  *DefaultNoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	sessions, err := utils.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		users:    repository.NewUserRepository(db),
		notes:    repository.NewNoteRepository(db),
		conns:    repository.NewConnectionRepository(db),
		notifier: &fakeNotifier{},
		events:   newFakeDispatcher(),
	}

	validate := validators.New()
	env.userSvc = NewUserService(env.users, validate, NewCodeIssuer(DefaultCodeTTL), env.notifier, sessions)
	env.noteSvc = NewNoteService(env.notes, env.users, env.events, policy.NewNotePolicy(), validate)
	return env
}

// signUpVerified registers 'username' and claims it with the code it was sent.
func (e *testEnv) signUpVerified(t *testing.T, username string) *entity.User {
	t.Helper()
	ctx := context.Background()

	_, apierr := e.userSvc.SignUp(ctx, &contract.SignUpRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret123",
	})
	require.Nil(t, apierr)

	code := e.notifier.last(t).Code
	_, apierr = e.userSvc.VerifyCode(ctx, &contract.VerifyCodeRequest{Username: username, Code: code})
	require.Nil(t, apierr)

	user, err := e.users.FindByUsername(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}
