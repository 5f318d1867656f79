// Package http implements the HTTP handlers of the dashboard service.
//
// Handlers are thin: they parse and validate the request, call a service
// and render the result. Errors are rendered as RFC 7807 problem details
// through the shared ErrorHandler.
//
// # Routes
//
//	GET /                           HTML dashboard (?section=... selects analyses)
//	GET /api/catalog                analysis catalog in display order
//	GET /api/dashboard              selected sections as JSON
//	GET /api/dashboard/{kind}       one analysis; 422 if it cannot be computed
//	GET /api/export.xlsx            workbook with one sheet per section
//	GET /api/export/{kind}.csv      one analysis as CSV
//	GET /api/datasets               loaded table sizes and columns
//	GET /api/health[/live|/ready]   health checks
//	GET /api/version                build information
//
// An unknown name in ?section= is a 400 validation problem; an unknown
// {kind} in the path is a 404.
package http
