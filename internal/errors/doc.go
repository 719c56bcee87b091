// Package errors implements the coded error taxonomy used across the
// dev server's config, route, transform, and handler boundaries.
package errors
