// Package trendoscope is an in-process Go client for trendoscope: it scrapes blogs and
// RSS feeds, indexes them for semantic search, learns a style profile per blog and
// generates posts in that style, without running the HTTP server.
//
//	client, _ := trendoscope.New(ctx,
//	    trendoscope.WithDataDir("data"),
//	    trendoscope.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "", "gpt-4o-mini"),
//	    trendoscope.WithFeeds(trendoscope.Feed{Name: "lenta", URL: "https://lenta.ru/rss/news"}),
//	)
//	_, _ = client.IngestBlog(ctx, "https://example.com/blog", 30)
//	post, _ := client.Generate(ctx, trendoscope.GenerateRequest{
//	    Source: "https://example.com/blog",
//	    Topic:  "ставка ЦБ",
//	    Mode:   trendoscope.ModeIronic,
//	})
//
// Without WithEmbedder the client uses a local hashing embedder, which needs no network.
// Generation requires a text provider (WithTextProvider, WithOpenAI or WithAnthropic).
package trendoscope
