package matching

import (
	"context"
	"time"

	"vkinder/apps/bot/internal/repository"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/model"
)

// ==================== repositories ====================

type fakeUserRepository struct {
	getProfileFn func(ctx context.Context, userID int64) (*model.User, error)
}

var _ repository.IUserRepository = (*fakeUserRepository)(nil)

func (f *fakeUserRepository) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	if f.getProfileFn == nil {
		return nil, nil
	}
	return f.getProfileFn(ctx, userID)
}

func (f *fakeUserRepository) CreateProfile(_ context.Context, user *model.User) (*model.User, error) {
	return user, nil
}

func (f *fakeUserRepository) UpdateProfile(context.Context, *model.User) error { return nil }

func (f *fakeUserRepository) SaveState(context.Context, int64, model.BotState) error { return nil }

func (f *fakeUserRepository) GetState(context.Context, int64) (model.BotState, error) {
	return model.StateNone, nil
}

func (f *fakeUserRepository) UpdateToken(context.Context, int64, string) error { return nil }

type fakeParamsRepository struct {
	getFn func(ctx context.Context, userID int64) (*model.SearchParams, error)
}

var _ repository.ISearchParamsRepository = (*fakeParamsRepository)(nil)

func (f *fakeParamsRepository) GetSearchParams(ctx context.Context, userID int64) (*model.SearchParams, error) {
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(ctx, userID)
}

func (f *fakeParamsRepository) CreateSearchParams(_ context.Context, p *model.SearchParams) (*model.SearchParams, error) {
	return p, nil
}

func (f *fakeParamsRepository) UpdateSearchParams(context.Context, int64, model.SearchParamsUpdate) (*model.SearchParams, error) {
	return nil, nil
}

type fakeFavoriteRepository struct {
	listFn func(ctx context.Context, userID int64) ([]*model.Favorite, error)
}

var _ repository.IFavoriteRepository = (*fakeFavoriteRepository)(nil)

func (f *fakeFavoriteRepository) AddFavorite(_ context.Context, fav *model.Favorite) (*model.Favorite, error) {
	return fav, nil
}

func (f *fakeFavoriteRepository) RemoveFavorite(context.Context, int64, int64) error { return nil }

func (f *fakeFavoriteRepository) ListFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, userID)
}

func (f *fakeFavoriteRepository) IsFavorite(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type fakeBlacklistRepository struct {
	isBlacklistedFn func(ctx context.Context, userID, candidateID int64) (bool, error)
}

var _ repository.IBlacklistRepository = (*fakeBlacklistRepository)(nil)

func (f *fakeBlacklistRepository) AddBlacklist(_ context.Context, userID, candidateID int64) (*model.Blacklist, error) {
	return &model.Blacklist{UserID: userID, BlockedUserID: candidateID}, nil
}

func (f *fakeBlacklistRepository) IsBlacklisted(ctx context.Context, userID, candidateID int64) (bool, error) {
	if f.isBlacklistedFn == nil {
		return false, nil
	}
	return f.isBlacklistedFn(ctx, userID, candidateID)
}

func (f *fakeBlacklistRepository) ListBlacklist(context.Context, int64) ([]*model.Blacklist, error) {
	return nil, nil
}

type fakeMatchRepository struct {
	getBestFn func(ctx context.Context, userID int64) (*model.CachedMatch, error)
	upserted  []*model.CachedMatch
	shown     []int64
	cleared   []int64
}

var _ repository.IMatchRepository = (*fakeMatchRepository)(nil)

func (f *fakeMatchRepository) UpsertCachedMatch(_ context.Context, m *model.CachedMatch) error {
	f.upserted = append(f.upserted, m)
	return nil
}

func (f *fakeMatchRepository) GetBestCachedMatch(ctx context.Context, userID int64) (*model.CachedMatch, error) {
	if f.getBestFn == nil {
		return nil, nil
	}
	return f.getBestFn(ctx, userID)
}

func (f *fakeMatchRepository) MarkMatchShown(_ context.Context, _ int64, candidateID int64) error {
	f.shown = append(f.shown, candidateID)
	return nil
}

func (f *fakeMatchRepository) ClearCachedMatches(_ context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

// ==================== gateway ====================

type fakeGateway struct {
	searchFn      func(ctx context.Context, c vkapi.SearchCriteria) ([]*vkapi.Profile, error)
	friends       map[int64]map[int64]struct{}
	groups        map[int64]map[int64]struct{}
	photosFn      func(ctx context.Context, userID int64, n int) ([]model.Photo, error)
	cities        map[string]int64
	searchCalls   int
	lastCriteria  vkapi.SearchCriteria
	friendLookups []int64
}

var _ Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) Search(ctx context.Context, c vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
	g.searchCalls++
	g.lastCriteria = c
	if g.searchFn == nil {
		return nil, nil
	}
	return g.searchFn(ctx, c)
}

func (g *fakeGateway) FriendsOf(_ context.Context, userID int64) (map[int64]struct{}, error) {
	g.friendLookups = append(g.friendLookups, userID)
	return g.friends[userID], nil
}

func (g *fakeGateway) GroupsOf(_ context.Context, userID int64) (map[int64]struct{}, error) {
	set, ok := g.groups[userID]
	if !ok {
		return nil, &vkapi.Error{Kind: vkapi.KindFatal, Method: "groups.get", Code: vkapi.CodeAccessDenied, Message: "Access denied"}
	}
	return set, nil
}

func (g *fakeGateway) CandidatePhotos(ctx context.Context, userID int64, n int) ([]model.Photo, error) {
	if g.photosFn == nil {
		return []model.Photo{{ID: userID*10 + 1, OwnerID: userID, Likes: 5}}, nil
	}
	return g.photosFn(ctx, userID, n)
}

func (g *fakeGateway) ResolveCity(_ context.Context, name string) (int64, error) {
	return g.cities[name], nil
}

func ids(v ...int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(v))
	for _, id := range v {
		set[id] = struct{}{}
	}
	return set
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
