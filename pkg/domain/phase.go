package domain

// Phase is the lifecycle position of a single run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSpawning   Phase = "spawning"
	PhaseStreaming  Phase = "streaming"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
	PhaseSpawnError Phase = "spawn_error"
	PhaseCancelled  Phase = "cancelled"
)

// Terminal reports whether the phase settles a run.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSuccess, PhaseFailed, PhaseSpawnError, PhaseCancelled:
		return true
	}
	return false
}

// OK reports whether the run finished successfully.
func (p Phase) OK() bool {
	return p == PhaseSuccess
}
