/*
Package ports defines the driven ports (interfaces) of pipedeck.

These interfaces decouple run orchestration from the concrete process
launcher, the outcome storage backends and cross-instance locking.

# Key Interfaces

  - Launcher: Starts the external tool for an ActionRequest and exposes its streams.
  - OutcomeStore: Persists the settled Outcome of every finished run.
  - DistributedLocker: Serializes triggers of the same slot across instances.
*/
package ports
