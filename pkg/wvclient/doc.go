// Package wvclient provides the main entry point for creating Weaviate clients.
//
// New normalizes the endpoint, picks the auth strategy from the configured
// credentials, discovers the OIDC token endpoint when needed and returns a
// ready *weaviate.Client.
//
//	client, err := wvclient.New(ctx, &weaviate.Config{
//		Endpoint: "http://localhost:8080",
//		APIKey:   os.Getenv("WEAVIATE_API_KEY"),
//	})
//	if err != nil { log.Fatal(err) }
//
//	live, _ := client.Misc().LiveChecker().Do(ctx)
package wvclient
