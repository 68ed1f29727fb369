package missions

import "fmt"

type Phase string

const (
	PhaseDecomposition Phase = "penguraian"
	PhaseAbstraction   Phase = "pengabstrakan"
	PhaseConstruction  Phase = "pembinaan"
	PhaseDebugging     Phase = "penyahpepijat"
	PhaseComplete      Phase = "complete"
)

// Phases lists the playable phases of every mission in play order.
var Phases = []Phase{
	PhaseDecomposition,
	PhaseAbstraction,
	PhaseConstruction,
	PhaseDebugging,
}

// ParsePhase accepts only playable phases; "complete" is a state, not a phase.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// Next returns the phase after p. The last playable phase leads to PhaseComplete.
func Next(p Phase) (Phase, bool) {
	for i, candidate := range Phases {
		if candidate != p {
			continue
		}
		if i == len(Phases)-1 {
			return PhaseComplete, true
		}
		return Phases[i+1], true
	}
	return "", false
}

func (p Phase) Index() int {
	for i, candidate := range Phases {
		if candidate == p {
			return i
		}
	}
	if p == PhaseComplete {
		return len(Phases)
	}
	return -1
}
