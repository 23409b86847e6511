package conversation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vkinder/apps/bot/internal/matching"
	"vkinder/apps/bot/internal/oauth"
	"vkinder/apps/bot/internal/repository"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/config"
	"vkinder/model"
	"vkinder/pkg/logger"
)

var convTestOnce sync.Once

func initConvTestLogger() {
	convTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// ==================== collaborators ====================

type sentMessage struct {
	peerID      int64
	text        string
	keyboard    *vkapi.Keyboard
	attachments []string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, peerID int64, text string, kb *vkapi.Keyboard, attachments []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{peerID: peerID, text: text, keyboard: kb, attachments: attachments})
	return f.err
}

func (f *fakeMessenger) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.text)
	}
	return out
}

func (f *fakeMessenger) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakeProfileSource struct {
	lookupFn func(ctx context.Context, userID int64) (*vkapi.Profile, error)
}

func (f *fakeProfileSource) LookupProfile(ctx context.Context, userID int64) (*vkapi.Profile, error) {
	return f.lookupFn(ctx, userID)
}

type photoRef struct{ ownerID, photoID int64 }

type fakeUserAPI struct {
	mu      sync.Mutex
	profile *vkapi.Profile
	err     error
	likes   []photoRef
	unlikes []photoRef
	tokens  []string
}

func (f *fakeUserAPI) forToken(token string) UserAPI {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f
}

func (f *fakeUserAPI) LookupProfile(context.Context, int64) (*vkapi.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return &vkapi.Profile{}, nil
	}
	return f.profile, nil
}

func (f *fakeUserAPI) LikePhoto(_ context.Context, ownerID, photoID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes = append(f.likes, photoRef{ownerID, photoID})
	return nil
}

func (f *fakeUserAPI) UnlikePhoto(_ context.Context, ownerID, photoID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlikes = append(f.unlikes, photoRef{ownerID, photoID})
	return nil
}

type fakeMatcher struct {
	nextFn      func(ctx context.Context, ownerID int64) (*matching.Candidate, error)
	calls       int
	invalidated []int64
}

func (f *fakeMatcher) GetNextCandidate(ctx context.Context, ownerID int64) (*matching.Candidate, error) {
	f.calls++
	if f.nextFn == nil {
		return nil, nil
	}
	return f.nextFn(ctx, ownerID)
}

func (f *fakeMatcher) InvalidateCache(_ context.Context, ownerID int64) error {
	f.invalidated = append(f.invalidated, ownerID)
	return nil
}

type fakeAuthorizer struct {
	beginFn    func(ctx context.Context, ownerID int64) (string, error)
	completeFn func(ctx context.Context, ownerID int64, redirectURL string) (*oauth.Result, error)
	redirects  []string
}

func (f *fakeAuthorizer) Begin(ctx context.Context, ownerID int64) (string, error) {
	return f.beginFn(ctx, ownerID)
}

func (f *fakeAuthorizer) Complete(ctx context.Context, ownerID int64, redirectURL string) (*oauth.Result, error) {
	f.redirects = append(f.redirects, redirectURL)
	return f.completeFn(ctx, ownerID, redirectURL)
}

type fakeValidator struct{ valid bool }

func (f *fakeValidator) ValidateToken(context.Context, string) bool { return f.valid }

// ==================== fixture ====================

type fixture struct {
	ctrl      *Controller
	messenger *fakeMessenger
	community *fakeProfileSource
	userAPI   *fakeUserAPI
	matcher   *fakeMatcher
	auth      *fakeAuthorizer
	validator *fakeValidator

	users      repository.IUserRepository
	params     repository.ISearchParamsRepository
	favorites  repository.IFavoriteRepository
	blacklist  repository.IBlacklistRepository
	photoLikes repository.IPhotoLikeRepository
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	initConvTestLogger()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bot.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		messenger: &fakeMessenger{},
		community: &fakeProfileSource{lookupFn: func(_ context.Context, userID int64) (*vkapi.Profile, error) {
			return &vkapi.Profile{ID: userID, FirstName: "Ivan", LastName: "Petrov", Age: intPtr(30), Gender: model.GenderMale, City: "Moscow"}, nil
		}},
		userAPI:   &fakeUserAPI{},
		matcher:   &fakeMatcher{},
		auth:      &fakeAuthorizer{},
		validator: &fakeValidator{valid: true},

		users:      repository.NewUserRepository(db, nil),
		params:     repository.NewSearchParamsRepository(db),
		favorites:  repository.NewFavoriteRepository(db),
		blacklist:  repository.NewBlacklistRepository(db, nil),
		photoLikes: repository.NewPhotoLikeRepository(db),
	}

	cfg := config.DefaultBotConfig()
	cfg.NextCandidateBackoff = 0
	cfg.FavoritesPageSize = 3

	f.ctrl = NewController(cfg, Deps{
		Messenger:  f.messenger,
		Community:  f.community,
		UserAPI:    f.userAPI.forToken,
		Matcher:    f.matcher,
		Auth:       f.auth,
		Validator:  f.validator,
		Users:      f.users,
		Params:     f.params,
		Favorites:  f.favorites,
		Blacklist:  f.blacklist,
		PhotoLikes: f.photoLikes,
	}, NewSessionStore(100, 0))
	// background likes run inline so assertions see them
	f.ctrl.likeAsync = func(ctx context.Context, task func(ctx context.Context)) { task(ctx) }
	return f
}

// authorized stores an authorized owner in state.
func (f *fixture) authorized(t *testing.T, userID int64, state model.BotState) {
	t.Helper()
	ctx := context.Background()
	_, err := f.users.CreateProfile(ctx, &model.User{
		UserID:    userID,
		FirstName: "Ivan",
		Age:       intPtr(30),
		Gender:    model.GenderMale,
		City:      "Moscow",
		State:     state,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.UpdateToken(ctx, userID, "user-token"))
}

func (f *fixture) say(t *testing.T, userID int64, text string) error {
	t.Helper()
	return f.ctrl.HandleMessage(context.Background(), vkapi.Message{FromID: userID, PeerID: userID, Text: text})
}

func (f *fixture) state(t *testing.T, userID int64) model.BotState {
	t.Helper()
	s, err := f.users.GetState(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

func anna() *matching.Candidate {
	return &matching.Candidate{
		UserID:    10,
		FirstName: "Anna",
		LastName:  "K",
		Domain:    "anna",
		Score:     1.6,
		Percent:   40,
		Photos: []model.Photo{
			{ID: 101, OwnerID: 10, Likes: 9},
			{ID: 102, OwnerID: 10, Likes: 7},
			{ID: 103, OwnerID: 10, Likes: 5},
			{ID: 104, OwnerID: 10, Likes: 1},
		},
	}
}
