package pagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Driver names the backend that holds cached pages.
type Driver string

const (
	DriverNull      Driver = "null"
	DriverFile      Driver = "file"
	DriverMemory    Driver = "memory"
	DriverMemcached Driver = "memcached"
	DriverDynamo    Driver = "dynamodb"
	DriverSQL       Driver = "sql"
	DriverRedis     Driver = "redis"
	DriverNATS      Driver = "nats"
)

var drivers = []Driver{
	DriverNull, DriverFile, DriverMemory, DriverMemcached,
	DriverDynamo, DriverSQL, DriverRedis, DriverNATS,
}

// ParseDriver maps a configured driver name to a Driver. "none" is accepted
// for the null driver.
func ParseDriver(name string) (Driver, error) {
	if name == "none" {
		return DriverNull, nil
	}
	for _, d := range drivers {
		if string(d) == name {
			return d, nil
		}
	}
	return "", &UnknownDriverError{Driver: Driver(name)}
}

// Shared reports whether pages in this backend outlive the process and can be
// written by other processes. Only shared backends need a key prefix or a
// read memo.
func (d Driver) Shared() bool {
	switch d {
	case DriverNull, DriverMemory:
		return false
	default:
		return true
	}
}

// maxPagePrefixLen keeps derived prefixes well inside memcached's key limit.
const maxPagePrefixLen = 96

// PagePrefix derives a key prefix from what decides a cached page's content:
// the wiki host, the title prefix prepended to every page name and the
// retrieval mode. Retrievers pointed at different wikis, title prefixes or
// modes can then share one backend without reading each other's pages.
//
// Parts are joined with "|", which cannot occur in a wiki title. Spaces become
// underscores, as they do in titles. A title prefix that would make the
// result too long is replaced by a digest.
func PagePrefix(endpoint, titlePrefix, mode string) string {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	title := strings.ReplaceAll(titlePrefix, " ", "_")

	if len(host)+len(title)+len(mode)+2 > maxPagePrefixLen && title != "" {
		sum := sha256.Sum256([]byte(title))
		title = hex.EncodeToString(sum[:6])
	}
	parts := make([]string, 0, 3)
	for _, part := range []string{host, title, mode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return defaultCachePrefix
	}
	return strings.Join(parts, "|")
}
