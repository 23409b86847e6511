package vkapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vkinder/model"
)

// profileFields are requested for every profile lookup and search.
var profileFields = []string{
	"sex", "bdate", "city", "domain", "photo_max_orig",
	"interests", "music", "books", "movies",
}

// Profile is a VK user as the bot sees it. Missing data degrades to zero values.
type Profile struct {
	ID        int64
	FirstName string
	LastName  string
	Domain    string
	Age       *int
	Gender    string // model.GenderMale, model.GenderFemale or ""
	City      string
	CityID    int64
	PhotoURL  string
	IsClosed  bool

	// Interests maps a category (model.InterestCategories) to its comma separated items.
	Interests map[string][]string
}

type rawUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Domain    string `json:"domain"`
	Bdate     string `json:"bdate"`
	Sex       int    `json:"sex"`
	City      *struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"city"`
	PhotoMaxOrig string `json:"photo_max_orig"`
	IsClosed     bool   `json:"is_closed"`
	Interests    string `json:"interests"`
	Music        string `json:"music"`
	Books        string `json:"books"`
	Movies       string `json:"movies"`
}

func (u rawUser) toProfile(now time.Time) *Profile {
	p := &Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Domain:    u.Domain,
		Age:       AgeFromBirthdate(u.Bdate, now),
		Gender:    genderFromSex(u.Sex),
		PhotoURL:  u.PhotoMaxOrig,
		IsClosed:  u.IsClosed,
		Interests: map[string][]string{},
	}
	if p.Domain == "" {
		p.Domain = "id" + strconv.FormatInt(u.ID, 10)
	}
	if u.City != nil {
		p.City = u.City.Title
		p.CityID = u.City.ID
	}
	for category, raw := range map[string]string{
		"interests": u.Interests,
		"music":     u.Music,
		"books":     u.Books,
		"movies":    u.Movies,
	} {
		if items := splitInterests(raw); len(items) > 0 {
			p.Interests[category] = items
		}
	}
	return p
}

// LookupProfile returns the profile of userID; 0 means the token owner.
func (c *Client) LookupProfile(ctx context.Context, userID int64) (*Profile, error) {
	params := url.Values{}
	if userID != 0 {
		params.Set("user_ids", strconv.FormatInt(userID, 10))
	}
	params.Set("fields", strings.Join(profileFields, ","))
	params.Set("lang", "ru")

	var users []rawUser
	if err := c.Call(ctx, "users.get", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &Error{Kind: KindFatal, Method: "users.get", Err: errEmptyResponse}
	}
	return users[0].toProfile(time.Now()), nil
}

// FriendsOf returns the friend ids of userID.
func (c *Client) FriendsOf(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))

	var resp struct {
		Items []int64 `json:"items"`
	}
	if err := c.Call(ctx, "friends.get", params, &resp); err != nil {
		return nil, err
	}
	return toSet(resp.Items), nil
}

// GroupsOf returns the community ids userID belongs to.
func (c *Client) GroupsOf(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("count", "1000")

	var resp struct {
		Items []int64 `json:"items"`
	}
	if err := c.Call(ctx, "groups.get", params, &resp); err != nil {
		return nil, err
	}
	return toSet(resp.Items), nil
}

// ResolveCity returns the VK id of the best matching city, 0 when none matches.
func (c *Client) ResolveCity(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	params := url.Values{}
	params.Set("q", name)
	params.Set("count", "1")

	var resp struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}
	if err := c.Call(ctx, "database.getCities", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Items) == 0 {
		return 0, nil
	}
	return resp.Items[0].ID, nil
}

// AgeFromBirthdate computes the calendar age from a D.M.YYYY birthdate.
// Partial (D.M) or malformed dates yield nil.
func AgeFromBirthdate(bdate string, now time.Time) *int {
	if strings.Count(bdate, ".") != 2 {
		return nil
	}
	born, err := time.Parse("2.1.2006", bdate)
	if err != nil {
		return nil
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}

func genderFromSex(sex int) string {
	switch sex {
	case 1:
		return model.GenderFemale
	case 2:
		return model.GenderMale
	default:
		return ""
	}
}

func splitInterests(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
