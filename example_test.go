package pageretriever_test

import (
	"context"
	"fmt"

	"github.com/goforj/pageretriever"
	"github.com/goforj/pageretriever/filefetcher"
	"github.com/goforj/pageretriever/pagefake"
	"github.com/rs/zerolog"
)

func ExampleNormalizePageName() {
	fmt.Println(pageretriever.NormalizePageName("Web:Test/" + "No Spaces Allowed "))
	// Output: Web:Test/No_Spaces_Allowed
}

func ExampleCachingPageRetriever() {
	ctx := context.Background()
	files := filefetcher.NewInMemoryFetcher(map[string]string{"Oracle Kai": "some non-cached content"})
	local := pageretriever.NewLocalFilePageRetriever(files, zerolog.Nop())
	cached := pageretriever.NewCachingPageRetriever(local, pagefake.NewStore())

	fmt.Println(cached.FetchPage(ctx, "Oracle Kai"))
	files.Put("Oracle Kai", "changed on disk")
	fmt.Println(cached.FetchPage(ctx, "Oracle Kai"))
	// Output:
	// some non-cached content
	// some non-cached content
}
