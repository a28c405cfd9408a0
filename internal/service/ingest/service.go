// Package ingest drives the text ingestion pipeline: analyze a stored
// source text, resolve every token against the lexicon, and replace the
// text's link set atomically.
package ingest

import (
	"context"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/analyzer"
	"github.com/verba-app/verba-backend/internal/domain"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
)

type textRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.SourceText, error)
}

type linkRepo interface {
	ReplaceForText(ctx context.Context, textID int64, links []domain.TokenLink) (int, error)
}

type resolver interface {
	Resolve(ctx context.Context, in lexicon.ResolveInput) (*lexicon.Resolution, error)
}

type annotator interface {
	Annotate(ctx context.Context, textID int64, sentenceNumber int, sentence string, tokens []domain.DependencyToken) (*domain.SentenceAnnotation, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service ingests source texts.
type Service struct {
	log      *slog.Logger
	texts    textRepo
	links    linkRepo
	resolver resolver
	syntax   annotator
	analyzer analyzer.Analyzer
	tx       txManager
}

// NewService creates a new ingest service.
func NewService(
	log *slog.Logger,
	texts textRepo,
	links linkRepo,
	resolver resolver,
	syntax annotator,
	an analyzer.Analyzer,
	tx txManager,
) *Service {
	return &Service{
		log:      log.With("service", "ingest"),
		texts:    texts,
		links:    links,
		resolver: resolver,
		syntax:   syntax,
		analyzer: an,
		tx:       tx,
	}
}
