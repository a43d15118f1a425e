package models

import "time"

// FetchConfig contains runtime options shared by outbound fetches.
type FetchConfig struct {
	Proxies    []string
	Timeout    time.Duration
	UserAgents []string
}
