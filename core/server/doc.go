// Package server holds the HTTP server configuration and builds the fiber app.
//
// New installs the global middleware chain shared by every feature: ray id,
// request logging, the public swagger UI, and API key auth. Features register
// their routes on the returned app through core/loader.
//
// # Usage
//
//	app := server.New(cfg.Server, logg)
//	_ = mgr.LoadAll(app)
//	_ = app.Listen(cfg.Server.Address())
package server
