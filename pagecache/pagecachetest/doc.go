// Package pagecachetest provides a reusable contract suite for pagecache.Store
// implementations.
//
// Typical use from a driver test:
//
//	func TestRedisStoreContract(t *testing.T) {
//		store := pagecache.NewRedisStore(ctx, client, pagecache.WithPrefix("test"))
//		pagecachetest.RunStoreContract(t, store, pagecachetest.Options{
//			TTL:     time.Second,
//			TTLWait: 1500 * time.Millisecond,
//		})
//	}
package pagecachetest
