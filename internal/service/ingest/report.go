package ingest

import (
	"github.com/google/uuid"

	"github.com/verba-app/verba-backend/internal/service/lexicon"
)

// Report summarizes one text's ingestion.
type Report struct {
	ID             uuid.UUID
	TextID         int64
	Sentences      int
	LinksCreated   int
	EntriesCreated int
	// ambiguous resolutions recorded for later curation
	Ambiguities []lexicon.Diagnostic
}

// BatchReport aggregates independent per-text runs. A failed text appears
// in Errors and produces no Report; the rest of the batch is unaffected.
type BatchReport struct {
	ID      uuid.UUID
	Reports []Report
	Errors  map[int64]string
}
