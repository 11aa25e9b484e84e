package backend

import (
	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/session"
)

var (
	_ dashboard.API           = (*Client)(nil)
	_ session.IdentityFetcher = (*Client)(nil)
	_ TokenSource             = (session.TokenStore)(nil)
)
