package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpovs/viewtube/internal/common"
	"github.com/akarpovs/viewtube/internal/dbx"
	"github.com/akarpovs/viewtube/internal/server/auth"
	"github.com/akarpovs/viewtube/internal/server/models"
	accountsrepo "github.com/akarpovs/viewtube/internal/server/repositories/accounts"
	channelsrepo "github.com/akarpovs/viewtube/internal/server/repositories/channels"
)

// --- fakes ---

// fakeAccountsRepo keeps accounts in memory and mimics the repository
// contract closely enough for service-level tests.
type fakeAccountsRepo struct {
	accounts map[string]*models.Account // by id
	nextID   int

	setRefreshErr error
	setPwdErr     error
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{accounts: map[string]*models.Account{}}
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	for _, existing := range f.accounts {
		if existing.Handle == a.Handle || existing.Email == a.Email {
			return nil, common.ErrDuplicateAccount
		}
	}
	f.nextID++
	stored := *a
	stored.ID = fmt.Sprintf("acc-%d", f.nextID)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.accounts[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeAccountsRepo) FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Handle == handle || a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) UpdateProfile(ctx context.Context, id, displayName, email string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	a.DisplayName = displayName
	a.Email = email
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	a.AvatarURL = url
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	a.CoverImageURL = url
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	if f.setRefreshErr != nil {
		return f.setRefreshErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	a.RefreshToken = token
	return nil
}

func (f *fakeAccountsRepo) ClearRefreshToken(ctx context.Context, id string) error {
	if a, ok := f.accounts[id]; ok {
		a.RefreshToken = ""
	}
	return nil
}

func (f *fakeAccountsRepo) SetPassword(ctx context.Context, id, hash string) error {
	if f.setPwdErr != nil {
		return f.setPwdErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	c channelsrepo.Repository
}

func (m *fakeRepoManager) Accounts(db dbx.Querier) accountsrepo.Repository { return m.a }
func (m *fakeRepoManager) Channels(db dbx.Querier) channelsrepo.Repository { return m.c }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }

// fakeMediaStore tracks uploads/deletes and can be told to fail.
type fakeMediaStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeMediaStore) Upload(ctx context.Context, localPath string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "http://media.local/media/" + localPath
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, url string) error {
	f.deletes = append(f.deletes, url)
	return f.deleteErr
}

func newTestUserService(t *testing.T) (*UserService, *fakeAccountsRepo, *fakeMediaStore) {
	t.Helper()
	repo := newFakeAccountsRepo()
	media := &fakeMediaStore{}
	tokens := auth.NewTokenMaker("a-secret", "r-secret", 15*time.Minute, 240*time.Hour, clockwork.NewFakeClock())
	svc := NewUserService(nil, &fakeRepoManager{a: repo}, tokens, media)
	return svc, repo, media
}

func register(t *testing.T, svc *UserService, handle, email string) *models.Profile {
	t.Helper()
	profile, err := svc.Register(context.Background(), RegisterParams{
		Handle:      handle,
		Email:       email,
		DisplayName: "Name " + handle,
		Password:    "pw1",
		AvatarPath:  handle + ".png",
	})
	require.NoError(t, err)
	return profile
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	svc, repo, _ := newTestUserService(t)

	profile, err := svc.Register(context.Background(), RegisterParams{
		Handle:      "  Alice ",
		Email:       " A@X.com ",
		DisplayName: "Alice",
		Password:    "pw1",
		AvatarPath:  "avatar.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Handle)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.NotEmpty(t, profile.AvatarURL)

	stored := repo.accounts[profile.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.Empty(t, stored.RefreshToken)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	cases := []RegisterParams{
		{Email: "a@x.com", DisplayName: "A", Password: "p", AvatarPath: "a.png"},
		{Handle: "a", DisplayName: "A", Password: "p", AvatarPath: "a.png"},
		{Handle: "a", Email: "a@x.com", Password: "p", AvatarPath: "a.png"},
		{Handle: "a", Email: "a@x.com", DisplayName: "A", AvatarPath: "a.png"},
		{Handle: "a", Email: "a@x.com", DisplayName: "A", Password: "p"},
	}
	for _, p := range cases {
		_, err := svc.Register(context.Background(), p)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}

func TestRegister_DuplicateEmailWithDifferentHandle(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	register(t, svc, "alice", "a@x.com")

	_, err := svc.Register(context.Background(), RegisterParams{
		Handle:      "alice2",
		Email:       "a@x.com",
		DisplayName: "Alice2",
		Password:    "pw2",
		AvatarPath:  "a2.png",
	})
	assert.ErrorIs(t, err, common.ErrDuplicateAccount)
}

func TestRegister_DuplicateHandleWithDifferentEmail(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	register(t, svc, "alice", "a@x.com")

	_, err := svc.Register(context.Background(), RegisterParams{
		Handle:      "ALICE",
		Email:       "other@x.com",
		DisplayName: "Other",
		Password:    "pw2",
		AvatarPath:  "o.png",
	})
	assert.ErrorIs(t, err, common.ErrDuplicateAccount)
}

func TestLogin_StoresIssuedRefreshToken(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	loggedIn, pair, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	assert.Equal(t, profile.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, pair.RefreshToken, repo.accounts[profile.ID].RefreshToken)
}

func TestLogin_ByEmail(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	register(t, svc, "alice", "a@x.com")

	_, pair, err := svc.Login(context.Background(), "A@X.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	register(t, svc, "alice", "a@x.com")

	_, _, err := svc.Login(context.Background(), "alice", "wrongpw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_UnknownIdentity(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, _, err := svc.Login(context.Background(), "ghost", "pw1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_RefreshPersistenceFailure(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	register(t, svc, "alice", "a@x.com")

	repo.setRefreshErr = errors.New("db down")

	_, _, err := svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrTokenGeneration)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	_, first, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, repo.accounts[profile.ID].RefreshToken)

	// The pre-rotation token still verifies cryptographically but no longer
	// matches the stored value.
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrTokenMismatch)

	// The new one works exactly once before the next rotation.
	third, err := svc.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, common.ErrTokenMismatch)
	assert.Equal(t, third.RefreshToken, repo.accounts[profile.ID].RefreshToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefresh_AfterLogout(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	_, pair, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), profile.ID))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrTokenMismatch)
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	require.NoError(t, svc.Logout(context.Background(), profile.ID))
	require.NoError(t, svc.Logout(context.Background(), profile.ID))
}

func TestUpdateProfile_RejectsPartialInput(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	_, err := svc.UpdateProfile(context.Background(), profile.ID, "Alice B", "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.UpdateProfile(context.Background(), profile.ID, "", "b@x.com")
	assert.ErrorIs(t, err, common.ErrValidation)

	updated, err := svc.UpdateProfile(context.Background(), profile.ID, "Alice B", "B@X.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.DisplayName)
	assert.Equal(t, "b@x.com", updated.Email)
}

func TestUpdateAvatar_DeletesOldBeforePersisting(t *testing.T) {
	svc, repo, media := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")
	oldURL := repo.accounts[profile.ID].AvatarURL

	updated, err := svc.UpdateAvatar(context.Background(), profile.ID, "new.png")
	require.NoError(t, err)

	assert.NotEqual(t, oldURL, updated.AvatarURL)
	assert.Contains(t, media.deletes, oldURL)
	assert.Equal(t, updated.AvatarURL, repo.accounts[profile.ID].AvatarURL)
}

func TestUpdateAvatar_OldDeletionFailureLeavesAccountUnchanged(t *testing.T) {
	svc, repo, media := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")
	oldURL := repo.accounts[profile.ID].AvatarURL

	media.deleteErr = errors.New("provider down")

	_, err := svc.UpdateAvatar(context.Background(), profile.ID, "new.png")
	assert.ErrorIs(t, err, common.ErrMediaOperation)
	assert.Equal(t, oldURL, repo.accounts[profile.ID].AvatarURL)
}

func TestUpdateCoverImage_NoPreviousCover(t *testing.T) {
	svc, repo, media := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")
	require.Empty(t, repo.accounts[profile.ID].CoverImageURL)

	deletesBefore := len(media.deletes)
	updated, err := svc.UpdateCoverImage(context.Background(), profile.ID, "cover.png")
	require.NoError(t, err)

	assert.NotEmpty(t, updated.CoverImageURL)
	assert.Len(t, media.deletes, deletesBefore)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	err := svc.ChangePassword(context.Background(), profile.ID, "wrong", "pw2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), profile.ID, "pw1", "pw2"))

	_, _, err = svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "alice", "pw2")
	assert.NoError(t, err)
}

func TestChangePassword_PersistenceFailureSurfaces(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	profile := register(t, svc, "alice", "a@x.com")

	repo.setPwdErr = errors.New("db down")

	err := svc.ChangePassword(context.Background(), profile.ID, "pw1", "pw2")
	assert.Error(t, err)

	// The old password must still work: the change was never persisted.
	repo.setPwdErr = nil
	_, _, err = svc.Login(context.Background(), "alice", "pw1")
	assert.NoError(t, err)
}
