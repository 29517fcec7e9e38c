package bilibili

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned by Profile when the cookies are not a valid session.
var ErrNotLoggedIn = errors.New("not logged in")

// UserProfile is the logged-in account.
type UserProfile struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	MID     int64  `json:"mid"`
	VIPType int    `json:"vip_type"`
}

// Profile returns the account the cookies belong to.
func (c *Client) Profile(ctx context.Context, cookies string) (UserProfile, error) {
	if cookies == "" {
		return UserProfile{}, ErrNotLoggedIn
	}
	var nav struct {
		IsLogin bool   `json:"isLogin"`
		Uname   string `json:"uname"`
		Face    string `json:"face"`
		MID     int64  `json:"mid"`
		VIPType int    `json:"vipType"`
	}
	err := c.getJSON(ctx, c.http, c.apiBase+"/x/web-interface/nav", nil, apiHeaders(cookies), &nav)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == -101 {
		return UserProfile{}, ErrNotLoggedIn
	}
	if err != nil {
		return UserProfile{}, err
	}
	if !nav.IsLogin {
		return UserProfile{}, ErrNotLoggedIn
	}
	return UserProfile{Name: nav.Uname, Avatar: nav.Face, MID: nav.MID, VIPType: nav.VIPType}, nil
}
