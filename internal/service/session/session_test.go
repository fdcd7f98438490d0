package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

type stubAuth struct {
	token      string
	err        error
	calls      int
	registered []models.Registration
}

func (s *stubAuth) Login(_ context.Context, _ models.Credentials) (string, error) {
	s.calls++
	return s.token, s.err
}

func (s *stubAuth) Register(_ context.Context, reg models.Registration) error {
	s.registered = append(s.registered, reg)
	return s.err
}

type memoryTokens struct {
	token   string
	loadErr error
	saveErr error
}

func (m *memoryTokens) Load(context.Context) (string, error) { return m.token, m.loadErr }
func (m *memoryTokens) Save(_ context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}
func (m *memoryTokens) Clear(context.Context) error {
	m.token = ""
	return nil
}

func TestManager_LoginPersistsToken(t *testing.T) {
	auth := &stubAuth{token: "tok"}
	store := &memoryTokens{}
	mgr := NewManager(auth, store, nil)

	sess, err := mgr.Login(context.Background(), models.Credentials{Login: " admin ", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, sess.Authenticated())
	assert.Equal(t, "tok", store.token)
	token, ok := mgr.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestManager_LoginRequiresCredentials(t *testing.T) {
	auth := &stubAuth{token: "tok"}
	mgr := NewManager(auth, nil, nil)

	_, err := mgr.Login(context.Background(), models.Credentials{Login: "admin"})
	assert.True(t, models.IsKind(err, models.ErrorValidation))
	assert.Zero(t, auth.calls)
}

func TestManager_FailedLoginKeepsSession(t *testing.T) {
	auth := &stubAuth{token: "first"}
	mgr := NewManager(auth, nil, nil)
	_, err := mgr.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	require.NoError(t, err)

	auth.err = models.NewErrorReport(models.ErrorUnauthorized, "invalid login or password").WithStatus(401)
	_, err = mgr.Login(context.Background(), models.Credentials{Login: "a", Password: "wrong"})
	assert.True(t, models.IsKind(err, models.ErrorUnauthorized))

	token, ok := mgr.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "first", token)
}

func TestManager_SaveFailureIsNotFatal(t *testing.T) {
	mgr := NewManager(&stubAuth{token: "tok"}, &memoryTokens{saveErr: errors.New("disk full")}, nil)

	_, err := mgr.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	require.NoError(t, err)
	assert.True(t, mgr.Session().Authenticated())
}

func TestManager_RestoreSurvivesRestart(t *testing.T) {
	store := &memoryTokens{}
	first := NewManager(&stubAuth{token: "persisted"}, store, nil)
	_, err := first.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	require.NoError(t, err)

	second := NewManager(&stubAuth{}, store, nil)
	require.NoError(t, second.Restore(context.Background()))

	token, ok := second.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestManager_RestoreError(t *testing.T) {
	mgr := NewManager(&stubAuth{}, &memoryTokens{loadErr: errors.New("boom")}, nil)
	assert.Error(t, mgr.Restore(context.Background()))
	assert.False(t, mgr.Session().Authenticated())
}

func TestManager_InvalidateClearsAndNotifiesOnce(t *testing.T) {
	store := &memoryTokens{}
	mgr := NewManager(&stubAuth{token: "tok"}, store, nil)
	_, err := mgr.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	require.NoError(t, err)

	var reasons []string
	mgr.OnLogout(func(reason string) { reasons = append(reasons, reason) })

	report := models.NewErrorReport(models.ErrorUnauthorized, "token expired").WithStatus(403)
	mgr.Invalidate(report)
	mgr.Invalidate(report)

	_, ok := mgr.CurrentToken()
	assert.False(t, ok)
	assert.Empty(t, store.token)
	assert.Equal(t, []string{"token expired"}, reasons)
	assert.Equal(t, "token expired", mgr.LogoutReason())
}

func TestManager_LoginClearsLogoutReason(t *testing.T) {
	mgr := NewManager(&stubAuth{token: "tok"}, nil, nil)
	mgr.Logout("user requested")
	assert.Equal(t, "user requested", mgr.LogoutReason())

	_, err := mgr.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	require.NoError(t, err)
	assert.Empty(t, mgr.LogoutReason())
}

func TestManager_Register(t *testing.T) {
	auth := &stubAuth{}
	mgr := NewManager(auth, nil, nil)

	require.NoError(t, mgr.Register(context.Background(), models.Registration{Login: "ana", Password: "pw", Role: "USER"}))
	require.Len(t, auth.registered, 1)
	assert.Equal(t, "ana", auth.registered[0].Login)

	err := mgr.Register(context.Background(), models.Registration{Login: "", Password: "pw"})
	assert.True(t, models.IsKind(err, models.ErrorValidation))
	assert.False(t, mgr.Session().Authenticated(), "register does not log in")
}
