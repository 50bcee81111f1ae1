package pageretriever

import "errors"

var (
	// ErrInvalidConfiguration is returned by constructors given unusable settings.
	ErrInvalidConfiguration = errors.New("pageretriever: invalid configuration")
	// ErrPageUnavailable covers transport failures, malformed or empty responses
	// and failed local reads.
	ErrPageUnavailable = errors.New("pageretriever: page unavailable")
	// ErrLogin is returned when the wiki session could not be authenticated.
	ErrLogin = errors.New("pageretriever: login failed")
)
