package repository

import (
	"context"
	"errors"
	"time"

	"vkinder/apps/bot/mq"
	rediskey "vkinder/consts/redisKey"
	"vkinder/model"
	"vkinder/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// luaRebuildBlacklist replaces the cached set only while the version still matches
// the one read before the database query.
//
//	KEYS[1]: blacklist set
//	KEYS[2]: version key
//	ARGV[1]: version seen by the reader ("" when absent)
//	ARGV[2]: TTL in seconds
//	ARGV[3..]: members
//
// Returns 1 when the set was written, 0 when a newer write made it stale.
const luaRebuildBlacklist = `
local current = redis.call('GET', KEYS[2])
if not current then
  current = ''
end
if current ~= ARGV[1] then
  return 0
end

redis.call('DEL', KEYS[1])
redis.call('SADD', KEYS[1], unpack(ARGV, 3))
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return 1
`

// rebuildTimeout bounds one background cache rebuild.
const rebuildTimeout = 5 * time.Second

// blacklistRepositoryImpl blacklist data access
type blacklistRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client

	// runAsync schedules cache rebuilds; replaced in tests
	runAsync func(ctx context.Context, task func(ctx context.Context))
}

// NewBlacklistRepository creates the blacklist repository. A nil redisClient runs DB only.
func NewBlacklistRepository(db *gorm.DB, redisClient *redis.Client) IBlacklistRepository {
	return &blacklistRepositoryImpl{
		db:          db,
		redisClient: redisClient,
		runAsync: func(ctx context.Context, task func(ctx context.Context)) {
			async.RunSafe(ctx, task, rebuildTimeout)
		},
	}
}

// AddBlacklist inserts the pair or returns the existing row, then drops the cached set.
func (r *blacklistRepositoryImpl) AddBlacklist(ctx context.Context, userID, candidateID int64) (*model.Blacklist, error) {
	row := model.Blacklist{UserID: userID, BlockedUserID: candidateID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "blocked_user_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	var existing model.Blacklist
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, candidateID).
		Take(&existing).Error; err != nil {
		return nil, WrapDBError(err)
	}

	r.invalidateCache(ctx, userID)
	return &existing, nil
}

// IsBlacklisted checks whether userID blocked candidateID.
// Cache-aside: the Redis set holds every blocked id of the owner, rebuilt from MySQL on a miss.
func (r *blacklistRepositoryImpl) IsBlacklisted(ctx context.Context, userID, candidateID int64) (bool, error) {
	cacheKey := rediskey.BlacklistKey(userID)

	// ==================== 1. Redis (pipeline) ====================
	var (
		version    string
		canRebuild bool
	)
	if r.redisClient != nil {
		pipe := r.redisClient.Pipeline()
		existsCmd := pipe.Exists(ctx, cacheKey)
		isMemberCmd := pipe.SIsMember(ctx, cacheKey, formatID(candidateID))
		// read before MySQL so a write landing in between invalidates the rebuild
		versionCmd := pipe.Get(ctx, rediskey.BlacklistVersionKey(userID))

		// refresh the TTL on 1% of reads
		if getRandomBool(0.01) {
			pipe.Expire(ctx, cacheKey, getRandomExpireTime(rediskey.BlacklistTTL))
		}

		_, err := pipe.Exec(ctx)
		if err = WrapRedisError(err); err != nil && !errors.Is(err, ErrRedisNil) {
			// degrade to MySQL, and leave the cache alone
			LogRedisError(ctx, err)
		} else {
			if existsCmd.Val() > 0 {
				// hit: the set is authoritative, "__EMPTY__" never matches an id
				return isMemberCmd.Val(), nil
			}
			version = versionCmd.Val()
			canRebuild = true
		}
	}

	// ==================== 2. miss: load from MySQL ====================
	var blocked []int64
	if err := r.db.WithContext(ctx).
		Model(&model.Blacklist{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &blocked).Error; err != nil {
		return false, WrapDBError(err)
	}

	// ==================== 3. rebuild the cache ====================
	if canRebuild {
		r.runAsync(ctx, func(runCtx context.Context) {
			r.rebuildCache(runCtx, userID, version, blocked)
		})
	}

	for _, id := range blocked {
		if id == candidateID {
			return true, nil
		}
	}
	return false, nil
}

// ListBlacklist returns entries oldest first.
func (r *blacklistRepositoryImpl) ListBlacklist(ctx context.Context, userID int64) ([]*model.Blacklist, error) {
	var entries []*model.Blacklist
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return entries, nil
}

// invalidateCache bumps the version and deletes the cached set; a failure goes to the retry queue.
func (r *blacklistRepositoryImpl) invalidateCache(ctx context.Context, userID int64) {
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.BlacklistKey(userID)
	versionKey := rediskey.BlacklistVersionKey(userID)
	versionTTL := rediskey.BlacklistTTL

	pipe := r.redisClient.TxPipeline()
	pipe.Incr(ctx, versionKey)
	pipe.Expire(ctx, versionKey, versionTTL)
	pipe.Del(ctx, cacheKey)
	if _, err := pipe.Exec(ctx); err != nil {
		cmds := []mq.RedisCmd{
			{Command: "incr", Args: []interface{}{versionKey}},
			{Command: "expire", Args: []interface{}{versionKey, int(versionTTL / time.Second)}},
			{Command: "del", Args: []interface{}{cacheKey}},
		}
		task := mq.BuildPipelineTask(cmds).
			WithUser(userID).
			WithSource("BlacklistRepository.AddBlacklist.Invalidate")
		LogAndRetryRedisError(ctx, task, err)
	}
}

// rebuildCache writes the full set (or the empty sentinel) unless the blacklist changed since version was read.
// Failures are only logged: replaying the write later would skip the version check.
func (r *blacklistRepositoryImpl) rebuildCache(ctx context.Context, userID int64, version string, blocked []int64) {
	ttl := getRandomExpireTime(rediskey.BlacklistTTL)
	args := make([]interface{}, 0, len(blocked)+2)
	if len(blocked) == 0 {
		ttl = rediskey.BlacklistEmptyTTL
		args = append(args, version, int(ttl/time.Second), rediskey.EmptySentinel)
	} else {
		args = append(args, version, int(ttl/time.Second))
		for _, id := range blocked {
			args = append(args, formatID(id))
		}
	}

	keys := []string{rediskey.BlacklistKey(userID), rediskey.BlacklistVersionKey(userID)}
	if err := r.redisClient.Eval(ctx, luaRebuildBlacklist, keys, args...).Err(); err != nil {
		LogRedisError(ctx, WrapRedisError(err))
	}
}
