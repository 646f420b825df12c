/*
Package observability provides tools for monitoring the Arbor engine.

Metrics turns the engine's lifecycle hooks into Prometheus collectors, and
Combine merges several hook sets so metrics and logging can observe the same
engine.
*/
package observability
