// Package ftsi indexes application records into embedded full-text catalogs
// and searches them back as typed values.
//
// An entity type is declared once as a Schema that binds field names to
// accessors on the record type. No struct tags or reflection over records are
// involved: each accessor returns a pointer into the record, so the same
// function projects a record into a document and fills one back in.
//
//	type Article struct {
//	    ID    string
//	    Title string
//	    Type  string
//	    Views int64
//	}
//
//	schema := ftsi.NewSchema("Article",
//	    ftsi.Text("id", func(a *Article) *string { return &a.ID }, ftsi.Key(), ftsi.Ignore()),
//	    ftsi.Text("title", func(a *Article) *string { return &a.Title }),
//	    ftsi.Text("type", func(a *Article) *string { return &a.Type }, ftsi.Exact()),
//	    ftsi.Number("views", func(a *Article) *int64 { return &a.Views }),
//	)
//
//	client, _ := ftsi.New(ftsi.WithStorage("/var/lib/ftsi"))
//	defer client.Close()
//
//	articles, _ := ftsi.NewIndex(client, schema)
//	_, _ = articles.Create(ctx, a1, a2, a3)
//	page, _ := articles.Find(ctx, "title", "hi", 1, 10)
//	page, _ = articles.Search().Keywords("Hello World").Where("type", "Article").Do(ctx)
//
// Records of several entity types may share one catalog (see Schema.InCatalog);
// every query and delete stays scoped to its own entity type.
package ftsi
