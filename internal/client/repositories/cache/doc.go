// Package cache keeps the last good API response per read so pages can fall
// back to it when the API is unreachable.
//
// Keys are opaque strings chosen by the caller ("visas", "visas:owner:<email>",
// ...). Payloads are stored as raw bytes; callers decide the encoding.
package cache
