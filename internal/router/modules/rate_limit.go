package modules

import (
	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/interface/middleware"
)

// rateLimitBypass exempts private networks plus RATE_LIMIT_ALLOW.
func rateLimitBypass() middleware.AllowFunc {
	var allowList []string
	if cfg := container.GetConfig(); cfg != nil {
		allowList = cfg.RateLimitAllowList()
	}
	return middleware.AnyAllow(middleware.AllowPrivateIP(), middleware.AllowCIDRs(allowList))
}
