package pageretriever

import "github.com/rs/zerolog"

// notice is the level between info and warning used for recoverable fetch
// failures. zerolog has no such level, so it is a tagged warning.
func notice(log zerolog.Logger) *zerolog.Event {
	return log.Warn().Str("severity", "notice")
}
