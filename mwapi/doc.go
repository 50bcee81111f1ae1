// Package mwapi is a small client for the MediaWiki action API: a cookie
// session, the two-step bot login, and form-encoded POST requests whose JSON
// replies are exposed through gjson paths.
package mwapi
