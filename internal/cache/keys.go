package cache

import "fmt"

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// DashboardChannel is the pub/sub channel for admin dashboard refresh events.
const DashboardChannel = "dac:dashboard:refresh"
