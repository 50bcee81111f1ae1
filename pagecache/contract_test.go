package pagecache_test

import (
	"context"
	"testing"
	"time"

	"github.com/goforj/pageretriever/pagecache"
	"github.com/goforj/pageretriever/pagecache/pagecachetest"
)

func TestStoreContract_LocalDrivers(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		store func(t *testing.T) pagecache.Store
		opts  pagecachetest.Options
	}{
		{
			name: "memory",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewMemoryStore(ctx, pagecache.WithMemoryCleanupInterval(time.Second))
			},
		},
		{
			name: "memory-gzip",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewMemoryStore(ctx, pagecache.WithCompression(pagecache.CompressionGzip))
			},
		},
		{
			name: "file-encrypted",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewFileStore(ctx, t.TempDir(),
					pagecache.WithEncryptionKey([]byte("0123456789abcdef")),
					pagecache.WithCompression(pagecache.CompressionGzip))
			},
		},
		{
			name: "file",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewFileStore(ctx, t.TempDir())
			},
		},
		{
			name: "file-memo",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewFileStore(ctx, t.TempDir(), pagecache.WithMemo())
			},
		},
		{
			name: "sqlite",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewSQLStore(ctx, "sqlite", "file:contract?mode=memory&cache=shared", "page_cache", pagecache.WithPrefix("contract"))
			},
		},
		{
			name: "null",
			store: func(t *testing.T) pagecache.Store {
				return pagecache.NewNullStore(ctx)
			},
			opts: pagecachetest.Options{NullSemantics: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.store(t)
			if err := pagecache.Err(store); err != nil {
				t.Fatalf("store construction failed: %v", err)
			}
			pagecachetest.RunStoreContract(t, store, tc.opts)
		})
	}
}
