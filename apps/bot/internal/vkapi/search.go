package vkapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vkinder/model"
)

var errEmptyResponse = errors.New("empty response")

// statusActiveSearch is the users.search relationship status "actively searching".
const statusActiveSearch = 6

// SearchCriteria are the users.search filters.
type SearchCriteria struct {
	Count    int
	AgeFrom  int
	AgeTo    int
	Gender   string // model.GenderMale, model.GenderFemale; anything else searches both
	CityID   int64
	HasPhoto bool
}

func (sc SearchCriteria) values() url.Values {
	params := url.Values{}
	params.Set("count", strconv.Itoa(sc.Count))
	params.Set("age_from", strconv.Itoa(sc.AgeFrom))
	params.Set("age_to", strconv.Itoa(sc.AgeTo))
	switch sc.Gender {
	case model.GenderFemale:
		params.Set("sex", "1")
	case model.GenderMale:
		params.Set("sex", "2")
	default:
		params.Set("sex", "0")
	}
	if sc.HasPhoto {
		params.Set("has_photo", "1")
	} else {
		params.Set("has_photo", "0")
	}
	if sc.CityID != 0 {
		params.Set("city", strconv.FormatInt(sc.CityID, 10))
	}
	params.Set("status", strconv.Itoa(statusActiveSearch))
	params.Set("fields", strings.Join(profileFields, ","))
	return params
}

// Search runs users.search and drops closed profiles.
// Flood control is retried once after the configured backoff.
func (c *Client) Search(ctx context.Context, criteria SearchCriteria) ([]*Profile, error) {
	params := criteria.values()

	return Retry(ctx, c.floodRetry, func(ctx context.Context) ([]*Profile, error) {
		var resp struct {
			Items []rawUser `json:"items"`
		}
		if err := c.Call(ctx, "users.search", params, &resp); err != nil {
			return nil, err
		}

		now := time.Now()
		profiles := make([]*Profile, 0, len(resp.Items))
		for _, u := range resp.Items {
			if u.IsClosed {
				continue
			}
			profiles = append(profiles, u.toProfile(now))
		}
		return profiles, nil
	})
}
