package vkapi

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"vkinder/model"
	"vkinder/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type rawPhoto struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"owner_id"`
	Likes   *struct {
		Count int `json:"count"`
	} `json:"likes"`
	Sizes []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"sizes"`
}

// toPhoto keeps the tallest size.
func (p rawPhoto) toPhoto() model.Photo {
	photo := model.Photo{ID: p.ID, OwnerID: p.OwnerID}
	if p.Likes != nil {
		photo.Likes = p.Likes.Count
	}
	best := -1
	for _, s := range p.Sizes {
		if s.Height > best {
			best = s.Height
			photo.URL = s.URL
		}
	}
	return photo
}

// TopPhotos returns the n most liked profile photos of userID.
func (c *Client) TopPhotos(ctx context.Context, userID int64, n int) ([]model.Photo, error) {
	params := url.Values{}
	params.Set("owner_id", strconv.FormatInt(userID, 10))
	params.Set("album_id", "profile")
	params.Set("extended", "1")
	params.Set("count", "200")

	photos, err := c.photos(ctx, "photos.get", params)
	if err != nil {
		return nil, err
	}
	return MergePhotos(n, photos), nil
}

// TaggedPhotos returns up to n photos userID is tagged on.
func (c *Client) TaggedPhotos(ctx context.Context, userID int64, n int) ([]model.Photo, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("extended", "1")
	params.Set("count", strconv.Itoa(n))

	return c.photos(ctx, "photos.getUserPhotos", params)
}

// CandidatePhotos merges profile and tagged photos and keeps the n most liked.
// Either source may fail on its own (closed album, no permission): it is logged and skipped.
// The call fails only when both sources do.
func (c *Client) CandidatePhotos(ctx context.Context, userID int64, n int) ([]model.Photo, error) {
	var (
		album, tagged       []model.Photo
		albumErr, taggedErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		album, albumErr = c.TopPhotos(ctx, userID, n)
		return nil
	})
	g.Go(func() error {
		tagged, taggedErr = c.TaggedPhotos(ctx, userID, n)
		return nil
	})
	_ = g.Wait()

	if albumErr != nil && taggedErr != nil {
		return nil, albumErr
	}
	if albumErr != nil {
		logger.Debug(ctx, "profile photos unavailable",
			logger.Int64("user_id", userID),
			logger.ErrorField("error", albumErr),
		)
	}
	if taggedErr != nil {
		logger.Debug(ctx, "tagged photos unavailable",
			logger.Int64("user_id", userID),
			logger.ErrorField("error", taggedErr),
		)
	}

	return MergePhotos(n, album, tagged), nil
}

func (c *Client) photos(ctx context.Context, method string, params url.Values) ([]model.Photo, error) {
	var resp struct {
		Items []rawPhoto `json:"items"`
	}
	if err := c.Call(ctx, method, params, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Photo, 0, len(resp.Items))
	for _, p := range resp.Items {
		out = append(out, p.toPhoto())
	}
	return out, nil
}

// MergePhotos dedupes by photo id (later sources overwrite earlier ones in place),
// orders by likes descending (stable) and keeps the first n.
func MergePhotos(n int, sources ...[]model.Photo) []model.Photo {
	index := make(map[int64]int)
	var merged []model.Photo
	for _, src := range sources {
		for _, p := range src {
			if i, ok := index[p.ID]; ok {
				merged[i] = p
				continue
			}
			index[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Likes > merged[j].Likes
	})
	if n >= 0 && len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

// LikePhoto puts a like on a photo.
func (c *Client) LikePhoto(ctx context.Context, ownerID, photoID int64) error {
	return c.Call(ctx, "likes.add", likeParams(ownerID, photoID), nil)
}

// UnlikePhoto removes a like from a photo.
func (c *Client) UnlikePhoto(ctx context.Context, ownerID, photoID int64) error {
	return c.Call(ctx, "likes.delete", likeParams(ownerID, photoID), nil)
}

func likeParams(ownerID, photoID int64) url.Values {
	params := url.Values{}
	params.Set("type", "photo")
	params.Set("owner_id", strconv.FormatInt(ownerID, 10))
	params.Set("item_id", strconv.FormatInt(photoID, 10))
	return params
}
