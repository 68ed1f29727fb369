package missions

import (
	"errors"
	"fmt"
)

var (
	ErrRunComplete   = errors.New("mission run is already complete")
	ErrPhaseMismatch = errors.New("result does not belong to the current phase")
)

// PhaseResult is the outcome of one graded submission.
type PhaseResult struct {
	Phase  Phase
	Passed bool
	Score  int
	Badge  string
}

// Transition is the phase state machine: a passed phase moves forward,
// anything else stays put. PhaseComplete is terminal.
func Transition(state Phase, passed bool) Phase {
	if state == PhaseComplete || !passed {
		return state
	}
	next, ok := Next(state)
	if !ok {
		return state
	}
	return next
}

// Run tracks one play-through of a mission: the current phase, the running
// total and the badges collected on the way.
type Run struct {
	Mission    int      `json:"mission"`
	Phase      Phase    `json:"phase"`
	TotalScore int      `json:"total_score"`
	Badges     []string `json:"badges"`
}

func NewRun(mission int) *Run {
	return &Run{Mission: mission, Phase: Phases[0], Badges: []string{}}
}

func (r *Run) Complete() bool {
	return r.Phase == PhaseComplete
}

func (r *Run) Advance(res PhaseResult) (Phase, error) {
	if r.Complete() {
		return r.Phase, ErrRunComplete
	}
	if res.Phase != r.Phase {
		return r.Phase, fmt.Errorf("%w: at %s, got %s", ErrPhaseMismatch, r.Phase, res.Phase)
	}
	if !res.Passed {
		return r.Phase, nil
	}

	r.TotalScore += res.Score
	if res.Badge != "" {
		r.Badges = append(r.Badges, res.Badge)
	}
	r.Phase = Transition(r.Phase, true)
	return r.Phase, nil
}

// Resume rebuilds a run from the best score of each passed phase. A phase
// counts as passed once it has a best score; play resumes at the first gap.
func Resume(mission int, best map[Phase]int, badges []string) *Run {
	run := NewRun(mission)
	for _, phase := range Phases {
		score, ok := best[phase]
		if !ok {
			break
		}
		_, _ = run.Advance(PhaseResult{Phase: phase, Passed: true, Score: score})
	}
	run.Badges = append(run.Badges, badges...)
	return run
}
