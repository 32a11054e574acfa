/*
Package domain contains the core models shared by every pipedeck component.

It describes what a user-triggered action is, how its lifecycle is expressed
and what a finished run leaves behind. The package has no I/O and no
dependency on the process, storage or transport layers.

# Key Entities

  - ActionKind: the catalogue of actions backed by a subcommand of the external tool.
  - ActionRequest: an immutable description of one invocation (argv, endpoint, secrets).
  - Phase: the per-run state machine (idle, spawning, streaming, terminal phases).
  - ExtractedResult: structured artifacts mined from the final output.
  - Outcome: the persisted record of a finished run.
  - UploadRecord: one entry of the tool's upload log.
*/
package domain
