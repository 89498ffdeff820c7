// Package glance implements the GlanceGateway against the push gateway's
// REST API. Capability checks are cached with a short TTL and collapsed
// through singleflight so the per-reading update path does not hammer the
// gateway.
package glance
