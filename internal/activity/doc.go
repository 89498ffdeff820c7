// Package activity owns the lifecycle of the single glance display session.
//
// The Controller is an actor: a buffered command channel feeds one goroutine
// that exclusively owns the session handle, so the handle-read, the gateway
// call and the handle-write of each operation form one unit. Callers never
// block on gateway calls and never see gateway errors; failures terminate at
// the diagnostics collaborator.
package activity
