// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key or Bearer token) with public path prefixes.
//   - rayid: assigns every request a ray id, stored in locals and echoed in X-Ray-ID.
//
// Both are registered globally in core/server.
package middleware
