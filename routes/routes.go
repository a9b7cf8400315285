package routes

// Package routes wires the HTTP surface of the cleansing service.
//
// Layout:
// - api.go: versioned API routes (/v1/*)
// - web.go: landing and docs routes (/, /docs)
//
// Usage:
// routes.SetupAllRoutes(router, addressController, adminController)
