// Package redis provides the Redis client wrapper and the Redis-backed
// reading store used when multiple instances share one reading window.
package redis
