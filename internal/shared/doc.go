// Package shared holds helpers used by more than one package of the
// dashboard. Its testutil subpackage provides a capturing slog handler and
// stations spreadsheet fixtures for tests.
package shared
