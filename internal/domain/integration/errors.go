package integration

import "errors"

var (
	ErrInvalidSyncType       = errors.New("integration: invalid sync type, expected full|products|locations|sales|inventory")
	ErrInvalidRemoteRecord   = errors.New("integration: invalid remote record")
	ErrPlatformUnavailable   = errors.New("integration: commerce platform unavailable")
	ErrPlatformRequestFailed = errors.New("integration: commerce platform request failed")
	ErrPlatformAuthFailed    = errors.New("integration: commerce platform rejected credentials")
	ErrPlatformRateLimited   = errors.New("integration: commerce platform rate limit exceeded")
	ErrFallbackInsertFailed  = errors.New("integration: fallback product insert failed")
)
