// Package shared holds helpers used by more than one package. Its testutil
// subpackage provides a capturing slog handler for asserting on log output
// in tests.
package shared
