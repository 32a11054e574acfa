/*
Package slot manages named action slots.

Each slot holds at most one run. Triggering a slot whose run is still in
progress fails with domain.ErrSlotBusy; triggering it after completion
replaces the finished run. Distinct slots share no state, so a stalled
transfer in one slot never delays polling of another.

Triggers on the same slot are serialized by a reference-counted lock map and,
when configured, by a ports.DistributedLocker shared across replicas.
*/
package slot
