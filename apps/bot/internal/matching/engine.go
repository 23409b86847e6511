// Package matching finds, scores and hands out dating candidates.
package matching

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"vkinder/apps/bot/internal/repository"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/config"
	"vkinder/model"
	"vkinder/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrNoToken is returned when the owner has not authorized the bot yet.
var ErrNoToken = errors.New("matching: owner has no access token")

// Gateway is the part of the VK API the engine needs, bound to the owner's token.
type Gateway interface {
	Search(ctx context.Context, criteria vkapi.SearchCriteria) ([]*vkapi.Profile, error)
	FriendsOf(ctx context.Context, userID int64) (map[int64]struct{}, error)
	GroupsOf(ctx context.Context, userID int64) (map[int64]struct{}, error)
	CandidatePhotos(ctx context.Context, userID int64, n int) ([]model.Photo, error)
	ResolveCity(ctx context.Context, name string) (int64, error)
}

// GatewayFunc returns the gateway acting with token.
type GatewayFunc func(token string) Gateway

// Candidate is a scored profile ready to be shown.
type Candidate struct {
	UserID    int64
	FirstName string
	LastName  string
	Domain    string
	Score     float64
	Percent   int
	Photos    []model.Photo
}

// ProfileURL is the short profile link shown on the card.
func (c *Candidate) ProfileURL() string {
	if c.Domain == "" {
		return "vk.com/id" + strconv.FormatInt(c.UserID, 10)
	}
	return "vk.com/" + c.Domain
}

// Attachments returns the messages.send attachment ids of the photos.
func (c *Candidate) Attachments() []string {
	out := make([]string, 0, len(c.Photos))
	for _, p := range c.Photos {
		out = append(out, p.Attachment())
	}
	return out
}

// Engine implements candidate search and the next-candidate flow.
type Engine struct {
	cfg          config.MatchingConfig
	gateway      GatewayFunc
	userRepo     repository.IUserRepository
	paramsRepo   repository.ISearchParamsRepository
	favoriteRepo repository.IFavoriteRepository
	blackRepo    repository.IBlacklistRepository
	matchRepo    repository.IMatchRepository
}

// NewEngine builds an engine.
func NewEngine(
	cfg config.MatchingConfig,
	gateway GatewayFunc,
	userRepo repository.IUserRepository,
	paramsRepo repository.ISearchParamsRepository,
	favoriteRepo repository.IFavoriteRepository,
	blackRepo repository.IBlacklistRepository,
	matchRepo repository.IMatchRepository,
) *Engine {
	return &Engine{
		cfg:          cfg,
		gateway:      gateway,
		userRepo:     userRepo,
		paramsRepo:   paramsRepo,
		favoriteRepo: favoriteRepo,
		blackRepo:    blackRepo,
		matchRepo:    matchRepo,
	}
}

// GetNextCandidate returns the best unshown cached match, or runs a fresh search
// when the cache is exhausted. nil means nobody suitable was found.
func (e *Engine) GetNextCandidate(ctx context.Context, ownerID int64) (*Candidate, error) {
	// 1. cache first
	cached, err := e.matchRepo.GetBestCachedMatch(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		params, err := e.paramsRepo.GetSearchParams(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		e.markShown(ctx, ownerID, cached.MatchedUserID)
		return fromCache(cached, WeightsFrom(params)), nil
	}

	// 2. fresh search, the rest of the result stays cached for the next call
	candidates, err := e.FindCandidates(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	e.markShown(ctx, ownerID, candidates[0].UserID)
	return candidates[0], nil
}

// FindCandidates searches VK with the owner's parameters and returns the
// candidates ordered by score, best first. Blacklisted, favorited and
// zero-score profiles are dropped. Every result is written to the match cache.
func (e *Engine) FindCandidates(ctx context.Context, ownerID int64) ([]*Candidate, error) {
	// 1. owner and parameters are both required
	owner, err := e.userRepo.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	params, err := e.paramsRepo.GetSearchParams(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil || params == nil {
		logger.Warn(ctx, "search without profile or params", logger.Int64("user_id", ownerID))
		return nil, nil
	}
	if !owner.HasToken() {
		return nil, ErrNoToken
	}
	gw := e.gateway(owner.AccessToken)

	// 2. search
	criteria := e.criteria(ctx, gw, owner, params)
	profiles, err := gw.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		logger.Info(ctx, "search returned nobody", logger.Int64("user_id", ownerID))
		return nil, nil
	}

	// 3. exclusions
	favorites, err := e.favoriteSet(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// 4. score
	weights := WeightsFrom(params)
	ownerSubject := e.ownerSubject(ctx, gw, owner, params, weights)

	candidates := make([]*Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == ownerID {
			continue
		}
		if _, ok := favorites[p.ID]; ok {
			continue
		}
		blocked, err := e.blackRepo.IsBlacklisted(ctx, ownerID, p.ID)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}

		score := Score(ownerSubject, e.candidateSubject(ctx, gw, p, ownerSubject, weights), weights)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, &Candidate{
			UserID:    p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Domain:    p.Domain,
			Score:     score,
			Percent:   MatchPercent(score, weights),
		})
	}

	// 5. rank, ties keep search order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	// 6. photos and cache
	for _, c := range candidates {
		photos, err := gw.CandidatePhotos(ctx, c.UserID, e.cfg.PhotosPerCandidate)
		if err != nil {
			logger.Warn(ctx, "candidate photos unavailable",
				logger.Int64("candidate_id", c.UserID),
				logger.ErrorField("error", err),
			)
		}
		c.Photos = photos

		if err := e.matchRepo.UpsertCachedMatch(ctx, &model.CachedMatch{
			UserID:        ownerID,
			MatchedUserID: c.UserID,
			MatchScore:    c.Score,
			FirstName:     c.FirstName,
			LastName:      c.LastName,
			Domain:        c.Domain,
			Photos:        model.EncodePhotos(photos),
		}); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "candidates found",
		logger.Int64("user_id", ownerID),
		logger.Int("raw", len(profiles)),
		logger.Int("kept", len(candidates)),
	)
	return candidates, nil
}

// criteria builds users.search filters. An unresolvable city searches everywhere.
func (e *Engine) criteria(ctx context.Context, gw Gateway, owner *model.User, params *model.SearchParams) vkapi.SearchCriteria {
	c := vkapi.SearchCriteria{
		Count:    e.cfg.SearchCount,
		AgeFrom:  params.MinAge,
		AgeTo:    params.MaxAge,
		Gender:   TargetGender(owner.Gender, params.Gender),
		HasPhoto: params.HasPhoto,
	}

	city := params.City
	if city == "" {
		city = owner.City
	}
	if city != "" {
		id, err := gw.ResolveCity(ctx, city)
		if err != nil {
			logger.Warn(ctx, "city not resolved",
				logger.String("city", city),
				logger.ErrorField("error", err),
			)
		}
		c.CityID = id
	}
	return c
}

// TargetGender returns the gender to search for: the explicit choice when set,
// else the opposite of the owner, else anyone.
func TargetGender(ownerGender, chosen string) string {
	switch chosen {
	case model.GenderMale, model.GenderFemale, model.GenderAny:
		return chosen
	}
	switch ownerGender {
	case model.GenderMale:
		return model.GenderFemale
	case model.GenderFemale:
		return model.GenderMale
	default:
		return model.GenderAny
	}
}

// ownerSubject loads the owner's friends and groups concurrently; a failed lookup leaves the set empty.
func (e *Engine) ownerSubject(ctx context.Context, gw Gateway, owner *model.User, params *model.SearchParams, w Weights) Subject {
	// the search city narrows the query; the score compares against where the owner lives
	s := Subject{
		Age:       owner.Age,
		City:      owner.City,
		Interests: params.InterestMap(),
	}

	var g errgroup.Group
	if w.Friends > 0 {
		g.Go(func() error {
			s.Friends = lookupSet(ctx, "friends", owner.UserID, gw.FriendsOf)
			return nil
		})
	}
	if w.Groups > 0 {
		g.Go(func() error {
			s.Groups = lookupSet(ctx, "groups", owner.UserID, gw.GroupsOf)
			return nil
		})
	}
	_ = g.Wait()
	return s
}

// candidateSubject fetches the candidate's sets only when the owner's side can overlap.
func (e *Engine) candidateSubject(ctx context.Context, gw Gateway, p *vkapi.Profile, owner Subject, w Weights) Subject {
	s := Subject{Age: p.Age, City: p.City, Interests: p.Interests}
	if len(owner.Friends) > 0 && w.Friends > 0 {
		s.Friends = lookupSet(ctx, "friends", p.ID, gw.FriendsOf)
	}
	if len(owner.Groups) > 0 && w.Groups > 0 {
		s.Groups = lookupSet(ctx, "groups", p.ID, gw.GroupsOf)
	}
	return s
}

func lookupSet(ctx context.Context, what string, userID int64, fn func(context.Context, int64) (map[int64]struct{}, error)) map[int64]struct{} {
	set, err := fn(ctx, userID)
	if err != nil {
		logger.Debug(ctx, "comparison data unavailable",
			logger.String("what", what),
			logger.Int64("user_id", userID),
			logger.ErrorField("error", err),
		)
		return nil
	}
	return set
}

func (e *Engine) favoriteSet(ctx context.Context, ownerID int64) (map[int64]struct{}, error) {
	favs, err := e.favoriteRepo.ListFavorites(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(favs))
	for _, f := range favs {
		set[f.FavoriteUserID] = struct{}{}
	}
	return set, nil
}

func (e *Engine) markShown(ctx context.Context, ownerID, candidateID int64) {
	if err := e.matchRepo.MarkMatchShown(ctx, ownerID, candidateID); err != nil {
		logger.Warn(ctx, "match not marked as shown",
			logger.Int64("user_id", ownerID),
			logger.Int64("candidate_id", candidateID),
			logger.ErrorField("error", err),
		)
	}
}

func fromCache(m *model.CachedMatch, w Weights) *Candidate {
	return &Candidate{
		UserID:    m.MatchedUserID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Domain:    m.Domain,
		Score:     m.MatchScore,
		Percent:   MatchPercent(m.MatchScore, w),
		Photos:    m.PhotoList(),
	}
}

// InvalidateCache forgets every cached match of the owner, used when the search parameters change.
func (e *Engine) InvalidateCache(ctx context.Context, ownerID int64) error {
	return e.matchRepo.ClearCachedMatches(ctx, ownerID)
}

