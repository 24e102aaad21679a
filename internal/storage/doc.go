// Package storage archives processed pipeline outputs to S3-compatible object
// storage. Objects are keyed by date and run ID so successive runs never
// overwrite each other.
package storage
