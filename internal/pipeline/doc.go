// Package pipeline turns raw heart-rate readings into snapshots for the
// activity controller. It validates readings, maintains rolling statistics
// over a sliding window, and drives the controller's fire-and-forget update
// and end operations.
package pipeline
