// Package pageretriever fetches the text of named pages from a MediaWiki API
// or from local files behind one PageRetriever contract, and memoizes results
// in a pagecache.Store.
//
// Retrievers never fail loudly: FetchPage returns "" for any expected failure
// after logging it. Callers that need to tell an empty page from a failed fetch
// use the Fetch method exposed by the concrete retrievers.
package pageretriever
