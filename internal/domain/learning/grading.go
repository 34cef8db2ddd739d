package learning

import "github.com/google/uuid"

// OptionSet is a set of quiz option ids.
type OptionSet map[uuid.UUID]struct{}

// NewOptionSet builds a set from ids, collapsing duplicates.
func NewOptionSet(ids ...uuid.UUID) OptionSet {
	s := make(OptionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s OptionSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s OptionSet) Len() int { return len(s) }

// IDs returns the members in unspecified order.
func (s OptionSet) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// AnswerKey returns the ids of the options flagged correct.
func AnswerKey(options []*QuizOption) OptionSet {
	key := OptionSet{}
	for _, o := range options {
		if o != nil && o.IsCorrect {
			key[o.ID] = struct{}{}
		}
	}
	return key
}

type Grade struct {
	IsCorrect bool
	Score     float64
}

// GradingPolicy decides a grade from the answer key and the submitted selection.
// Implementations must be pure.
type GradingPolicy func(answerKey, selected OptionSet) Grade

// AllOrNothing awards 1.0 only when the selection equals the answer key exactly.
func AllOrNothing(answerKey, selected OptionSet) Grade {
	if len(answerKey) != len(selected) {
		return Grade{}
	}
	for id := range answerKey {
		if !selected.Has(id) {
			return Grade{}
		}
	}
	return Grade{IsCorrect: true, Score: 1.0}
}
