// Package weaviate provides a client for the Weaviate vector database HTTP API.
//
// # Overview
//
// A Connection binds scheme, host, default headers and credentials to an
// HTTPClient that sends every request to "{scheme}://{host}/v1". Each remote
// operation is a Command: a value built with its parameters up front and run
// with Do. Facades (Misc, SchemaAPI, GraphQL, Objects) construct commands for a
// connection; Client groups them. Most consumers build a Client with
// wvclient.New.
//
//	conn, err := weaviate.NewConnectionBuilder("http", "localhost:8080").
//		WithAuth(weaviate.APIKey("Bearer my-key")).
//		Build()
//	if err != nil { log.Fatal(err) }
//
//	meta, err := weaviate.NewMetaGetter(conn).Do(ctx)
//
// # Authentication
//
// Auth is one of NoAuth, APIKey or *OIDC. OIDC tokens are refreshed before a
// request when they are about to expire, using a refresh token, the password
// grant or the client_credentials grant. The token endpoint is discovered
// through "/v1/.well-known/openid-configuration" unless given.
//
// # Server version
//
// DBVersionProvider resolves the server version through /v1/meta once per
// connection and caches it, optionally in a shared Cache (memory or NATS KV).
// DBVersionSupport gates version dependent behaviour such as class-name
// namespaced object paths, logging a warning when a request style does not
// match the server.
//
// # Errors
//
// Commands return *TransportError, *DecodeError, *AuthError, *UsageError or
// *StatusError. Health checks (LiveChecker, ReadyChecker) never fail; they
// report false instead. Helpers such as IsNotFound branch on status codes.
package weaviate
