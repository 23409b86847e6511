package repository

import (
	"math/rand"
	"strconv"
	"time"
)

// getRandomExpireTime returns baseExpire ± 10% so keys written together do not expire together.
func getRandomExpireTime(baseExpire time.Duration) time.Duration {
	jitterRange := float64(baseExpire) * 0.1
	jitter := time.Duration(rand.Float64()*jitterRange*2 - jitterRange)

	return baseExpire + jitter
}

// getRandomBool returns true with the given probability.
func getRandomBool(probability float64) bool {
	return rand.Float64() < probability
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
