package torbox

import (
	"context"
	"net/url"
	"strconv"
)

type UserService struct {
	t *transport
}

// Get returns the current account, with its settings when includeSettings is set.
func (s *UserService) Get(ctx context.Context, includeSettings bool) (*User, error) {
	q := url.Values{}
	q.Set("settings", strconv.FormatBool(includeSettings))
	user, err := call[User](s.t.get(ctx, "user/me", q, true))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &User{}, nil
	}
	return user, nil
}
