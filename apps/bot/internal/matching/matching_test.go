package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vkinder/apps/bot/internal/vkapi"
	"vkinder/config"
	"vkinder/model"
	"vkinder/pkg/logger"
)

var matchingLoggerOnce sync.Once

func initMatchingTestLogger() {
	matchingLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// ==================== score ====================

func TestScoreAgeIsMonotonic(t *testing.T) {
	w := Weights{Age: 1}
	owner := Subject{Age: intPtr(30)}

	got := make([]float64, 0, 4)
	for _, age := range []int{30, 35, 40, 45} {
		got = append(got, Score(owner, Subject{Age: intPtr(age)}, w))
	}
	assert.Equal(t, []float64{1, 0.5, 0, 0}, got)
	assert.Equal(t, Score(owner, Subject{Age: intPtr(25)}, w), Score(owner, Subject{Age: intPtr(35)}, w))
}

func TestScoreTerms(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name      string
		owner     Subject
		candidate Subject
		want      float64
	}{
		{"nothing known", Subject{}, Subject{}, 0},
		{"owner age only", Subject{Age: intPtr(30)}, Subject{}, 0},
		{"city case insensitive", Subject{City: "Москва"}, Subject{City: "москва"}, 0.8},
		{"city differs", Subject{City: "Moscow"}, Subject{City: "Kyiv"}, 0},
		{"five common friends saturate", Subject{Friends: ids(1, 2, 3, 4, 5, 6)}, Subject{Friends: ids(1, 2, 3, 4, 5, 7)}, 0.9},
		{"one common friend", Subject{Friends: ids(1, 2)}, Subject{Friends: ids(1)}, 0.18},
		{"three common groups", Subject{Groups: ids(1, 2, 3)}, Subject{Groups: ids(1, 2, 3, 4)}, 0.18},
		{"groups unavailable", Subject{Groups: ids(1, 2, 3)}, Subject{}, 0},
		{"identical interests", Subject{Interests: map[string][]string{"music": {"rock"}}}, Subject{Interests: map[string][]string{"music": {"Rock "}}}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.owner, tt.candidate, w), 1e-9)
		})
	}
}

func TestScoreIsRounded(t *testing.T) {
	// age 0.9 plus friends 0.0667 rounds to 0.97
	owner := Subject{Age: intPtr(30), Friends: ids(1, 2, 3)}
	cand := Subject{Age: intPtr(31), Friends: ids(1)}
	got := Score(owner, cand, Weights{Age: 1, Friends: 1.0 / 3})
	assert.Equal(t, 0.97, got)
}

func TestInterestSimilarity(t *testing.T) {
	owner := map[string][]string{"music": {"Rock", "jazz"}}

	assert.InDelta(t, 0.5, InterestSimilarity(owner, map[string][]string{"music": {"rock"}}), 1e-9)
	assert.Equal(t, 0.0, InterestSimilarity(owner, map[string][]string{"books": {"rock"}}))
	assert.Equal(t, 0.0, InterestSimilarity(map[string][]string{}, map[string][]string{"music": {"rock"}}))

	// "beatles" vs "the beatles": 2*7/18
	got := InterestSimilarity(map[string][]string{"music": {"beatles"}}, map[string][]string{"music": {"the beatles"}})
	assert.InDelta(t, 14.0/18.0, got, 1e-9)

	// below the threshold
	assert.Equal(t, 0.0, InterestSimilarity(map[string][]string{"movies": {"alien"}}, map[string][]string{"movies": {"aliens of the deep"}}))

	// one owner item counts once per matching candidate item: (1 + 8/9) / 4
	got = InterestSimilarity(map[string][]string{"music": {"rock", "jazz", "pop", "folk"}}, map[string][]string{"music": {"rock", "rocks"}})
	assert.InDelta(t, (1.0+8.0/9.0)/4.0, got, 1e-9)

	// capped at 1
	many := map[string][]string{"interests": {"chess", "chess", "chess"}}
	assert.Equal(t, 1.0, InterestSimilarity(map[string][]string{"interests": {"chess"}}, many))
}

func TestTargetGender(t *testing.T) {
	tests := []struct {
		owner, chosen, want string
	}{
		{model.GenderMale, "", model.GenderFemale},
		{model.GenderFemale, "", model.GenderMale},
		{"", "", model.GenderAny},
		{model.GenderMale, model.GenderMale, model.GenderMale},
		{model.GenderFemale, model.GenderAny, model.GenderAny},
		{model.GenderMale, "robot", model.GenderFemale},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetGender(tt.owner, tt.chosen), "owner=%q chosen=%q", tt.owner, tt.chosen)
	}
}

func TestMatchPercent(t *testing.T) {
	w := DefaultWeights() // max 4.0
	assert.Equal(t, 40, MatchPercent(1.6, w))
	assert.Equal(t, 100, MatchPercent(5, w))
	assert.Equal(t, 0, MatchPercent(0, w))
	assert.Equal(t, 0, MatchPercent(1, Weights{}))
}

// ==================== engine ====================

type engineFixture struct {
	users     *fakeUserRepository
	params    *fakeParamsRepository
	favorites *fakeFavoriteRepository
	blacklist *fakeBlacklistRepository
	matches   *fakeMatchRepository
	gateway   *fakeGateway
	engine    *Engine
	tokens    []string
}

func newEngineFixture() *engineFixture {
	initMatchingTestLogger()

	f := &engineFixture{
		users: &fakeUserRepository{getProfileFn: func(_ context.Context, userID int64) (*model.User, error) {
			return &model.User{UserID: userID, FirstName: "Owner", Age: intPtr(30), Gender: model.GenderMale, City: "Moscow", AccessToken: "owner-token"}, nil
		}},
		params: &fakeParamsRepository{getFn: func(_ context.Context, userID int64) (*model.SearchParams, error) {
			return model.NewSearchParams(userID), nil
		}},
		favorites: &fakeFavoriteRepository{},
		blacklist: &fakeBlacklistRepository{},
		matches:   &fakeMatchRepository{},
		gateway: &fakeGateway{
			cities:  map[string]int64{"Moscow": 1},
			friends: map[int64]map[int64]struct{}{},
			groups:  map[int64]map[int64]struct{}{},
		},
	}
	f.engine = NewEngine(config.DefaultMatchingConfig(), func(token string) Gateway {
		f.tokens = append(f.tokens, token)
		return f.gateway
	}, f.users, f.params, f.favorites, f.blacklist, f.matches)
	return f
}

func TestFindCandidatesRanksAndFilters(t *testing.T) {
	f := newEngineFixture()
	const owner = int64(1)

	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		return []*vkapi.Profile{
			{ID: 30, FirstName: "Blocked", Age: intPtr(30), City: "Moscow"},
			{ID: 20, FirstName: "B", Domain: "bbb", Age: intPtr(45), City: "Kyiv"},
			{ID: owner, FirstName: "Owner", Age: intPtr(30), City: "Moscow"},
			{ID: 10, FirstName: "A", Domain: "aaa", Age: intPtr(32), City: "Moscow"},
			{ID: 40, FirstName: "Fav", Age: intPtr(30), City: "Moscow"},
			{ID: 50, FirstName: "Nobody", Age: intPtr(60), City: "Minsk"},
		}, nil
	}
	f.gateway.friends[owner] = ids(100, 101)
	f.gateway.friends[20] = ids(100)
	f.blacklist.isBlacklistedFn = func(_ context.Context, _, candidateID int64) (bool, error) {
		return candidateID == 30, nil
	}
	f.favorites.listFn = func(context.Context, int64) ([]*model.Favorite, error) {
		return []*model.Favorite{{UserID: owner, FavoriteUserID: 40}}, nil
	}

	got, err := f.engine.FindCandidates(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// A: age 0.8 + city 0.8; B: one common friend 0.2 * 0.8
	assert.Equal(t, int64(10), got[0].UserID)
	assert.Equal(t, 1.6, got[0].Score)
	assert.Equal(t, "vk.com/aaa", got[0].ProfileURL())
	assert.Equal(t, int64(20), got[1].UserID)
	assert.Equal(t, 0.16, got[1].Score)
	assert.Equal(t, []string{"photo10_101"}, got[0].Attachments())

	assert.Equal(t, vkapi.SearchCriteria{
		Count:    100,
		AgeFrom:  18,
		AgeTo:    45,
		Gender:   model.GenderFemale,
		CityID:   1,
		HasPhoto: true,
	}, f.gateway.lastCriteria)
	assert.Equal(t, []string{"owner-token"}, f.tokens)

	require.Len(t, f.matches.upserted, 2)
	assert.Equal(t, int64(10), f.matches.upserted[0].MatchedUserID)
	assert.Equal(t, "aaa", f.matches.upserted[0].Domain)
	assert.Empty(t, f.matches.shown)
}

func TestFindCandidatesScoresCityAgainstOwnerCity(t *testing.T) {
	f := newEngineFixture()
	f.gateway.cities["Kazan"] = 2
	f.params.getFn = func(_ context.Context, userID int64) (*model.SearchParams, error) {
		p := model.NewSearchParams(userID)
		p.City = "Kazan"
		return p, nil
	}
	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		return []*vkapi.Profile{
			{ID: 10, Age: intPtr(30), City: "Kazan"},
			{ID: 11, Age: intPtr(30), City: "Moscow"},
		}, nil
	}

	got, err := f.engine.FindCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), f.gateway.lastCriteria.CityID)
	// owner lives in Moscow: only the Moscow candidate earns the city weight
	assert.Equal(t, int64(11), got[0].UserID)
	assert.Equal(t, 1.6, got[0].Score)
	assert.Equal(t, 0.8, got[1].Score)
}

func TestFindCandidatesNeverReturnsBlacklisted(t *testing.T) {
	f := newEngineFixture()
	blocked := ids(11, 13)

	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		var out []*vkapi.Profile
		for id := int64(10); id < 15; id++ {
			out = append(out, &vkapi.Profile{ID: id, Age: intPtr(30)})
		}
		return out, nil
	}
	f.blacklist.isBlacklistedFn = func(_ context.Context, _, candidateID int64) (bool, error) {
		_, ok := blocked[candidateID]
		return ok, nil
	}

	got, err := f.engine.FindCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		_, isBlocked := blocked[c.UserID]
		assert.False(t, isBlocked, "candidate %d is blacklisted", c.UserID)
	}
	// equal scores keep search order
	assert.Equal(t, []int64{10, 12, 14}, []int64{got[0].UserID, got[1].UserID, got[2].UserID})
}

func TestFindCandidatesToleratesMissingPhotos(t *testing.T) {
	f := newEngineFixture()
	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		return []*vkapi.Profile{{ID: 10, Age: intPtr(30)}}, nil
	}
	f.gateway.photosFn = func(context.Context, int64, int) ([]model.Photo, error) {
		return nil, &vkapi.Error{Kind: vkapi.KindFatal, Code: vkapi.CodePrivateProfile}
	}

	got, err := f.engine.FindCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Photos)
	require.Len(t, f.matches.upserted, 1)
	assert.Equal(t, "[]", string(f.matches.upserted[0].Photos))
}

func TestFindCandidatesPreconditions(t *testing.T) {
	t.Run("no params", func(t *testing.T) {
		f := newEngineFixture()
		f.params.getFn = func(context.Context, int64) (*model.SearchParams, error) { return nil, nil }

		got, err := f.engine.FindCandidates(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, f.gateway.searchCalls)
	})

	t.Run("no profile", func(t *testing.T) {
		f := newEngineFixture()
		f.users.getProfileFn = func(context.Context, int64) (*model.User, error) { return nil, nil }

		got, err := f.engine.FindCandidates(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no token", func(t *testing.T) {
		f := newEngineFixture()
		f.users.getProfileFn = func(_ context.Context, id int64) (*model.User, error) {
			return &model.User{UserID: id}, nil
		}

		_, err := f.engine.FindCandidates(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("search failure", func(t *testing.T) {
		f := newEngineFixture()
		flood := &vkapi.Error{Kind: vkapi.KindTransient, Method: "users.search", Code: vkapi.CodeFloodControl}
		f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) { return nil, flood }

		_, err := f.engine.FindCandidates(context.Background(), 1)
		assert.True(t, vkapi.IsTransient(err))
	})
}

func TestFindCandidatesSkipsUnreachableComparisons(t *testing.T) {
	f := newEngineFixture()
	f.params.getFn = func(_ context.Context, userID int64) (*model.SearchParams, error) {
		p := model.NewSearchParams(userID)
		p.FriendsWeight = 0
		return p, nil
	}
	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		return []*vkapi.Profile{{ID: 10, Age: intPtr(30)}}, nil
	}

	_, err := f.engine.FindCandidates(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, f.gateway.friendLookups)
}

func TestGetNextCandidateIsCacheFirst(t *testing.T) {
	f := newEngineFixture()
	f.matches.getBestFn = func(_ context.Context, userID int64) (*model.CachedMatch, error) {
		return &model.CachedMatch{
			UserID:        userID,
			MatchedUserID: 77,
			MatchScore:    1.23,
			FirstName:     "Cached",
			Photos:        model.EncodePhotos([]model.Photo{{ID: 5, OwnerID: 77, Likes: 1}}),
		}, nil
	}

	got, err := f.engine.GetNextCandidate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(77), got.UserID)
	assert.Equal(t, 1.23, got.Score)
	assert.Equal(t, "vk.com/id77", got.ProfileURL())
	assert.Equal(t, []string{"photo77_5"}, got.Attachments())
	assert.Zero(t, f.gateway.searchCalls)
	assert.Equal(t, []int64{77}, f.matches.shown)
}

func TestGetNextCandidateFallsBackToSearch(t *testing.T) {
	f := newEngineFixture()
	f.gateway.searchFn = func(context.Context, vkapi.SearchCriteria) ([]*vkapi.Profile, error) {
		return []*vkapi.Profile{
			{ID: 10, Age: intPtr(40)},
			{ID: 11, Age: intPtr(30), City: "Moscow"},
		}, nil
	}

	got, err := f.engine.GetNextCandidate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(11), got.UserID)
	assert.Equal(t, 1, f.gateway.searchCalls)
	assert.Equal(t, []int64{11}, f.matches.shown)
	assert.Len(t, f.matches.upserted, 1) // age 40 scores zero
}

func TestGetNextCandidateExhausted(t *testing.T) {
	f := newEngineFixture()

	got, err := f.engine.GetNextCandidate(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.matches.shown)
}

func TestGetNextCandidateCacheError(t *testing.T) {
	f := newEngineFixture()
	dbErr := errors.New("db down")
	f.matches.getBestFn = func(context.Context, int64) (*model.CachedMatch, error) { return nil, dbErr }

	_, err := f.engine.GetNextCandidate(context.Background(), 1)
	assert.ErrorIs(t, err, dbErr)
	assert.Zero(t, f.gateway.searchCalls)
}

func TestInvalidateCache(t *testing.T) {
	f := newEngineFixture()
	require.NoError(t, f.engine.InvalidateCache(context.Background(), 9))
	assert.Equal(t, []int64{9}, f.matches.cleared)
}
