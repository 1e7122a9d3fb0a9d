package services

import "time"

const (
	KeyStats     = "minesweeper:stats"
	KeyRateLimit = "ratelimit:%s:%s"

	DefaultRateLimitWindow = time.Minute
)
