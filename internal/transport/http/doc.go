// Package http implements the HTTP handlers of the dashboard API. Handlers
// stay thin: they parse the request, call a service and render the result.
//
// # Routes
//
//	GET  /api/dashboard                      overview, options and dataset status
//	GET  /api/dashboard/options
//	GET  /api/dashboard/report               selection from the query string
//	POST /api/dashboard/report               selection as a JSON body
//	GET  /api/dashboard/export.xlsx
//	GET  /api/dashboard/export/{table}.csv
//	GET  /api/dashboard/charts/{chart}.png
//	GET  /api/dashboard/dataset
//	POST /api/dashboard/dataset/reload
//
// Every JSON response of the dashboard routes embeds the dataset status, so
// a failed load is visible to the user next to the (empty) figures.
//
// # Query Parameters
//
//	from, to   inclusive year range, defaults to the dataset bounds
//	station    defaults to the first station of the dataset
//	country    repeated or comma separated; "Todos" selects every country
//	           and an empty value selects none
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by the shared
// apierrors.ErrorHandler.
package http
