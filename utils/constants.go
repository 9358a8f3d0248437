package utils

import "time"

// Cache key prefixes for session state kept beside the query cache.
const (
	RevokedSessionPrefix = "session:revoked:"
	OAuthStatePrefix     = "oauth:state:"
)

// OAuthStateTTL is how long a started OAuth sign-in stays valid.
const OAuthStateTTL = 10 * time.Minute
