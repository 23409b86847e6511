package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBotState(t *testing.T) {
	for _, s := range AllStates {
		got, err := ParseBotState(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseBotState("DANCING")
	assert.Error(t, err)
	assert.Equal(t, StateNone, got)
	assert.False(t, StateNone.Valid())
}

func TestSearchParamsUpdate(t *testing.T) {
	p := NewSearchParams(1)
	minAge, hasPhoto := 25, false
	u := SearchParamsUpdate{MinAge: &minAge, HasPhoto: &hasPhoto}

	u.Apply(p)
	assert.Equal(t, 25, p.MinAge)
	assert.Equal(t, 45, p.MaxAge)
	assert.False(t, p.HasPhoto)
	assert.Equal(t, map[string]interface{}{"min_age": 25, "has_photo": false}, u.Columns())
	assert.True(t, SearchParamsUpdate{}.IsEmpty())
}

func TestInterestsRoundTrip(t *testing.T) {
	p := NewSearchParams(1)
	assert.Nil(t, p.InterestMap())

	p.Interests = EncodeInterests(map[string][]string{"music": {"rock"}})
	assert.Equal(t, []string{"rock"}, p.InterestMap()["music"])

	p.Interests = []byte("{broken")
	assert.Nil(t, p.InterestMap())
}

func TestPhotoHelpers(t *testing.T) {
	assert.Equal(t, "photo42_7", Photo{OwnerID: 42, ID: 7}.Attachment())

	m := &CachedMatch{Photos: EncodePhotos([]Photo{{ID: 7, OwnerID: 42, Likes: 3}})}
	require.Len(t, m.PhotoList(), 1)
	assert.Equal(t, 3, m.PhotoList()[0].Likes)
}

func TestAuthChallengeExpired(t *testing.T) {
	now := time.Now()
	c := &AuthChallenge{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(2*time.Minute)))
}
