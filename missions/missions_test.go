package missions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("pembinaan")
	require.NoError(t, err)
	assert.Equal(t, PhaseConstruction, p)

	_, err = ParsePhase("complete")
	assert.Error(t, err)
	_, err = ParsePhase("")
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	tests := []struct {
		from Phase
		want Phase
	}{
		{PhaseDecomposition, PhaseAbstraction},
		{PhaseAbstraction, PhaseConstruction},
		{PhaseConstruction, PhaseDebugging},
		{PhaseDebugging, PhaseComplete},
	}
	for _, tt := range tests {
		got, ok := Next(tt.from)
		require.True(t, ok)
		assert.Equal(t, tt.want, got)
	}

	_, ok := Next(PhaseComplete)
	assert.False(t, ok)
}

func TestCatalogShape(t *testing.T) {
	require.Equal(t, 3, MissionCount())
	for _, m := range Missions() {
		require.Len(t, m.Phases, len(Phases), "mission %d", m.ID)
		for i, p := range m.Phases {
			assert.Equal(t, Phases[i], p.Phase, "mission %d", m.ID)
			assert.False(t, p.Key.IsEmpty(), "mission %d phase %s has no key", m.ID, p.Phase)
		}
	}
}

func TestLookup(t *testing.T) {
	spec, err := Lookup(1, PhaseConstruction)
	require.NoError(t, err)
	assert.Equal(t, BadgeAlgorithmMaster, spec.Badge)
	assert.Equal(t, "master-algoritma", spec.BadgeCode())

	spec, err = Lookup(2, PhaseDebugging)
	require.NoError(t, err)
	assert.Equal(t, "master-pemulih-logik", spec.BadgeCode())

	spec, err = Lookup(3, PhaseDecomposition)
	require.NoError(t, err)
	assert.Empty(t, spec.BadgeCode())

	_, err = Lookup(4, PhaseDecomposition)
	assert.ErrorIs(t, err, ErrUnknownPhase)
	_, err = Lookup(1, PhaseComplete)
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name    string
		mission int
		phase   Phase
		answer  *Answer
		want    bool
	}{
		{
			name:    "groups in any order",
			mission: 1,
			phase:   PhaseDecomposition,
			answer: &Answer{Groups: map[string][]string{
				"input":  {"i7", "i4", "i3", "i2", "i1"},
				"proses": {"i6"},
				"output": {"i5"},
			}},
			want: true,
		},
		{
			name:    "item in wrong bucket",
			mission: 1,
			phase:   PhaseDecomposition,
			answer: &Answer{Groups: map[string][]string{
				"input":  {"i1", "i2", "i3", "i4"},
				"proses": {"i6", "i7"},
				"output": {"i5"},
			}},
			want: false,
		},
		{
			name:    "groups and sequence",
			mission: 1,
			phase:   PhaseAbstraction,
			answer: &Answer{
				Groups:   map[string][]string{"penting": {"m-8", "m-7", "m-5", "m-3", "m-1"}},
				Sequence: []string{"l-3", "l-1", "l-2"},
			},
			want: true,
		},
		{
			name:    "sequence out of order",
			mission: 1,
			phase:   PhaseConstruction,
			answer:  &Answer{Sequence: []string{"s2", "s5", "s3", "s1", "s4"}},
			want:    false,
		},
		{
			name:    "sequence in order",
			mission: 1,
			phase:   PhaseConstruction,
			answer:  &Answer{Sequence: []string{"s5", "s2", "s3", "s1", "s4"}},
			want:    true,
		},
		{
			name:    "numbered steps",
			mission: 1,
			phase:   PhaseDebugging,
			answer: &Answer{Slots: map[string]string{
				"step1": "1", "step2": "2", "step3": "4", "step4": "3", "step5": "5",
			}},
			want: true,
		},
		{
			name:    "single choice is case insensitive",
			mission: 2,
			phase:   PhaseDebugging,
			answer:  &Answer{Choice: " b "},
			want:    true,
		},
		{
			name:    "wrong choice",
			mission: 3,
			phase:   PhaseDebugging,
			answer:  &Answer{Choice: "A"},
			want:    false,
		},
		{
			name:    "missing slot",
			mission: 2,
			phase:   PhaseConstruction,
			answer:  &Answer{Slots: map[string]string{"oval1": "Mula"}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Lookup(tt.mission, tt.phase)
			require.NoError(t, err)
			got, err := Grade(spec.Key, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeEmptyAnswer(t *testing.T) {
	spec, err := Lookup(1, PhaseConstruction)
	require.NoError(t, err)

	_, err = Grade(spec.Key, nil)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	_, err = Grade(spec.Key, &Answer{Choice: "  "})
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestTransition(t *testing.T) {
	assert.Equal(t, PhaseDecomposition, Transition(PhaseDecomposition, false))
	assert.Equal(t, PhaseAbstraction, Transition(PhaseDecomposition, true))
	assert.Equal(t, PhaseComplete, Transition(PhaseDebugging, true))
	assert.Equal(t, PhaseComplete, Transition(PhaseComplete, true))
}

func TestRunAdvance(t *testing.T) {
	run := NewRun(1)

	phase, err := run.Advance(PhaseResult{Phase: PhaseDecomposition, Passed: false})
	require.NoError(t, err)
	assert.Equal(t, PhaseDecomposition, phase)

	steps := []PhaseResult{
		{Phase: PhaseDecomposition, Passed: true, Score: 20},
		{Phase: PhaseAbstraction, Passed: true, Score: 25},
		{Phase: PhaseConstruction, Passed: true, Score: 25, Badge: BadgeAlgorithmMaster},
		{Phase: PhaseDebugging, Passed: true, Score: 15},
	}
	for _, step := range steps {
		_, err := run.Advance(step)
		require.NoError(t, err)
	}

	assert.True(t, run.Complete())
	assert.Equal(t, 85, run.TotalScore)
	assert.Equal(t, []string{BadgeAlgorithmMaster}, run.Badges)

	_, err = run.Advance(PhaseResult{Phase: PhaseDebugging, Passed: true, Score: 25})
	assert.ErrorIs(t, err, ErrRunComplete)
}

func TestRunAdvanceRejectsOtherPhase(t *testing.T) {
	run := NewRun(2)
	_, err := run.Advance(PhaseResult{Phase: PhaseConstruction, Passed: true, Score: 25})
	assert.ErrorIs(t, err, ErrPhaseMismatch)
	assert.Equal(t, PhaseDecomposition, run.Phase)
	assert.Zero(t, run.TotalScore)
}

func TestResume(t *testing.T) {
	run := Resume(1, map[Phase]int{
		PhaseDecomposition: 25,
		PhaseAbstraction:   10,
		PhaseDebugging:     25,
	}, nil)
	assert.Equal(t, PhaseConstruction, run.Phase)
	assert.Equal(t, 35, run.TotalScore)

	run = Resume(1, nil, nil)
	assert.Equal(t, PhaseDecomposition, run.Phase)

	run = Resume(3, map[Phase]int{
		PhaseDecomposition: 25,
		PhaseAbstraction:   25,
		PhaseConstruction:  25,
		PhaseDebugging:     5,
	}, []string{BadgeAlgorithmMaster})
	assert.True(t, run.Complete())
	assert.Equal(t, []string{BadgeAlgorithmMaster}, run.Badges)
}
