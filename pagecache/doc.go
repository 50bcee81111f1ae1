/*
Package pagecache provides the key/value stores used to memoize fetched page
content, keyed by page name. Expiry and persistence are whatever the backing
driver offers; the package adds optional compression, encryption and a
per-process read memo on top. The memo never answers for a page longer than
the TTL it was last written with.
*/
package pagecache
