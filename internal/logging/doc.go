// Package logging provides structured JSON logging with optional rotation
// for the codebase-search engine. Logs go to stderr by default; enabling a
// file path additionally writes to a size-rotated file via io.MultiWriter.
package logging
