package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL ====================

const (
	// BlacklistTTL blacklist set cache TTL
	BlacklistTTL = 24 * time.Hour
	// BlacklistEmptyTTL TTL of the empty-set sentinel
	BlacklistEmptyTTL = 5 * time.Minute

	// CallbackRateLimitWindow window of the OAuth callback limiter
	CallbackRateLimitWindow = time.Second
)

// EmptySentinel marks a cached empty set so misses do not hit the database.
const EmptySentinel = "__EMPTY__"

// ==================== Keys ====================

// BlacklistKey blacklist set of an owner: vkinder:blacklist:{user_id}
func BlacklistKey(userID int64) string {
	return fmt.Sprintf("vkinder:blacklist:{%d}", userID)
}

// BlacklistVersionKey bumped on every blacklist write; a rebuild started under an older version is discarded.
// Shares the hash tag of BlacklistKey so both fit in one script call.
func BlacklistVersionKey(userID int64) string {
	return fmt.Sprintf("vkinder:blacklist:ver:{%d}", userID)
}

// CallbackIPRateLimitKey OAuth callback limiter: vkinder:rate:limit:callback:{ip}
func CallbackIPRateLimitKey(ip string) string {
	return fmt.Sprintf("vkinder:rate:limit:callback:%s", ip)
}
