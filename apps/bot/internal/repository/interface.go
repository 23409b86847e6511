package repository

import (
	"context"
	"time"

	"vkinder/model"
)

// ==================== User Repository ====================

// IUserRepository user profile and conversation state access.
type IUserRepository interface {
	// GetProfile returns the user, nil when absent. An unknown stored state is read as StateNone.
	GetProfile(ctx context.Context, userID int64) (*model.User, error)

	// CreateProfile inserts user; an existing row is returned untouched.
	CreateProfile(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateProfile overwrites the identity fields (name, age, gender, city).
	UpdateProfile(ctx context.Context, user *model.User) error

	// SaveState persists state; values outside the closed set are rejected with ErrInvalidState.
	SaveState(ctx context.Context, userID int64, state model.BotState) error

	// GetState returns the persisted state; missing user or unknown value yields StateNone.
	GetState(ctx context.Context, userID int64) (model.BotState, error)

	// UpdateToken stores the VK access token (sealed when a secret is configured).
	UpdateToken(ctx context.Context, userID int64, token string) error
}

// ==================== Search Params Repository ====================

// ISearchParamsRepository search parameter access.
type ISearchParamsRepository interface {
	// GetSearchParams returns the owner's parameters, nil when absent.
	GetSearchParams(ctx context.Context, userID int64) (*model.SearchParams, error)

	// CreateSearchParams inserts params; an existing row is returned untouched.
	CreateSearchParams(ctx context.Context, params *model.SearchParams) (*model.SearchParams, error)

	// UpdateSearchParams applies the present fields, creating a default row first when missing.
	UpdateSearchParams(ctx context.Context, userID int64, update model.SearchParamsUpdate) (*model.SearchParams, error)
}

// ==================== Favorite Repository ====================

// IFavoriteRepository favorites access.
type IFavoriteRepository interface {
	// AddFavorite is idempotent: a present pair returns the existing row.
	AddFavorite(ctx context.Context, fav *model.Favorite) (*model.Favorite, error)

	// RemoveFavorite deletes the pair; ErrRecordNotFound when it did not exist.
	RemoveFavorite(ctx context.Context, userID, candidateID int64) error

	// ListFavorites returns favorites oldest first.
	ListFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error)

	// IsFavorite checks the pair.
	IsFavorite(ctx context.Context, userID, candidateID int64) (bool, error)
}

// ==================== Blacklist Repository ====================

// IBlacklistRepository blacklist access.
type IBlacklistRepository interface {
	// AddBlacklist is idempotent: a present pair returns the existing row.
	AddBlacklist(ctx context.Context, userID, candidateID int64) (*model.Blacklist, error)

	// IsBlacklisted checks the pair, Redis first.
	IsBlacklisted(ctx context.Context, userID, candidateID int64) (bool, error)

	// ListBlacklist returns entries oldest first.
	ListBlacklist(ctx context.Context, userID int64) ([]*model.Blacklist, error)
}

// ==================== Match Repository ====================

// IMatchRepository cached match access.
type IMatchRepository interface {
	// UpsertCachedMatch inserts or re-scores the (owner, candidate) row and makes it eligible again.
	UpsertCachedMatch(ctx context.Context, match *model.CachedMatch) error

	// GetBestCachedMatch returns the highest-scored fresh, unshown row whose candidate
	// is neither blacklisted nor favorited; nil when none.
	GetBestCachedMatch(ctx context.Context, userID int64) (*model.CachedMatch, error)

	// MarkMatchShown stamps LastShown so the row is not handed out again.
	MarkMatchShown(ctx context.Context, userID, candidateID int64) error

	// ClearCachedMatches drops every cached row of the owner.
	ClearCachedMatches(ctx context.Context, userID int64) error
}

// ==================== Auth Repository ====================

// IAuthRepository PKCE challenge access.
type IAuthRepository interface {
	// SaveAuthChallenge replaces any prior challenge of the owner; the new one lives for ttl.
	SaveAuthChallenge(ctx context.Context, userID int64, verifier, state string, ttl time.Duration) error

	// GetAuthChallenge returns the unexpired challenge matching (owner, state), nil when none.
	GetAuthChallenge(ctx context.Context, userID int64, state string) (*model.AuthChallenge, error)

	// GetAuthChallengeByState returns the unexpired challenge with state, nil when none.
	GetAuthChallengeByState(ctx context.Context, state string) (*model.AuthChallenge, error)

	// DeleteAuthChallenge removes the owner's challenge.
	DeleteAuthChallenge(ctx context.Context, userID int64) error
}

// ==================== Photo Like Repository ====================

// IPhotoLikeRepository photo like bookkeeping.
type IPhotoLikeRepository interface {
	// LikePhoto records a like; created is false when it already existed.
	LikePhoto(ctx context.Context, userID, ownerID, photoID int64) (created bool, err error)

	// UnlikePhoto removes a like; removed is false when there was none.
	UnlikePhoto(ctx context.Context, userID, ownerID, photoID int64) (removed bool, err error)

	// HasLikedAny reports whether userID liked at least one of the photos.
	HasLikedAny(ctx context.Context, userID, ownerID int64, photoIDs []int64) (bool, error)
}
