/*
Package observability exposes prometheus metrics for action runs.

Metrics are fed by lifecycle hooks installed on the runner, so every run is
counted when it starts and when it settles, and transfer progress events are
counted as they are applied.
*/
package observability
