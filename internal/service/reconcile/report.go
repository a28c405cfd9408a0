package reconcile

import "github.com/google/uuid"

// Conflict records a field where both merge sides held different non-empty
// values. The survivor's value won; the victim's is preserved here for the
// curation trail.
type Conflict struct {
	SurvivorID    int64
	VictimID      int64
	Field         string
	SurvivorValue string
	VictimValue   string
}

// Report summarizes one consolidation pass. All counts are zero on a
// fixpoint run.
type Report struct {
	ID     uuid.UUID
	DryRun bool

	MergedPairs    int
	RelinkedForms  int64
	RelinkedTokens int64
	DeletedEntries int
	Conflicts      []Conflict

	RepairedLinks int
	FlaggedLinks  int

	RecountedEntries int64
}

// Empty reports whether the pass mutated nothing.
func (r *Report) Empty() bool {
	return r.MergedPairs == 0 &&
		r.RelinkedForms == 0 &&
		r.RelinkedTokens == 0 &&
		r.DeletedEntries == 0 &&
		r.RepairedLinks == 0 &&
		r.FlaggedLinks == 0
}
