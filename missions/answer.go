package missions

import (
	"errors"
	"sort"
	"strings"
)

var ErrEmptyAnswer = errors.New("answer is empty")

// Answer is what a player submits for a phase. Each puzzle uses the fields
// that match its mechanic: drag into buckets (Groups), order a list
// (Sequence), drop into named flowchart slots (Slots) or pick one option
// (Choice). An answer key uses the same shape.
type Answer struct {
	Groups   map[string][]string `json:"groups,omitempty"`
	Sequence []string            `json:"sequence,omitempty"`
	Slots    map[string]string   `json:"slots,omitempty"`
	Choice   string              `json:"choice,omitempty"`
}

func (a *Answer) IsEmpty() bool {
	return a == nil || (len(a.Groups) == 0 && len(a.Sequence) == 0 && len(a.Slots) == 0 && strings.TrimSpace(a.Choice) == "")
}

// Grade checks a submitted answer against a key. Only the parts present in
// the key are checked: buckets as sets, sequences in order, slots exactly.
func Grade(key, submitted *Answer) (bool, error) {
	if submitted.IsEmpty() {
		return false, ErrEmptyAnswer
	}

	for group, want := range key.Groups {
		if !sameSet(want, submitted.Groups[group]) {
			return false, nil
		}
	}

	if len(key.Sequence) > 0 && !sameOrder(key.Sequence, submitted.Sequence) {
		return false, nil
	}

	for slot, want := range key.Slots {
		if strings.TrimSpace(submitted.Slots[slot]) != want {
			return false, nil
		}
	}

	if key.Choice != "" && !strings.EqualFold(strings.TrimSpace(submitted.Choice), key.Choice) {
		return false, nil
	}

	return true, nil
}

func sameSet(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	a := append([]string(nil), want...)
	b := append([]string(nil), got...)
	sort.Strings(a)
	sort.Strings(b)
	return sameOrder(a, b)
}

func sameOrder(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
