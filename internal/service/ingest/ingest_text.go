package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verba-app/verba-backend/internal/analyzer"
	"github.com/verba-app/verba-backend/internal/domain"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
	"github.com/verba-app/verba-backend/internal/service/syntax"
)

// IngestText analyzes one stored text and links every token to the lexicon.
// The analyzer is called once up front; the text's previous link set is
// replaced in a single transaction, so a failure anywhere leaves the old
// links intact. Entries created by resolution are permanent either way,
// which is safe: the reconciler consolidates strays.
func (s *Service) IngestText(ctx context.Context, textID int64) (*Report, error) {
	text, err := s.texts.GetByID(ctx, textID)
	if err != nil {
		return nil, fmt.Errorf("ingest text %d: %w", textID, err)
	}

	doc, err := s.analyzer.Analyze(ctx, text.Content)
	if err != nil {
		return nil, fmt.Errorf("ingest text %d: %w", textID, err)
	}

	report := &Report{ID: uuid.New(), TextID: textID, Sentences: len(doc.Sentences)}

	var links []domain.TokenLink
	for _, sentence := range doc.Sentences {
		sentenceLinks, err := s.buildSentenceLinks(ctx, sentence, report)
		if err != nil {
			return nil, fmt.Errorf("ingest text %d: %w", textID, err)
		}
		links = append(links, sentenceLinks...)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.links.ReplaceForText(txCtx, textID, links)
		if err != nil {
			return err
		}
		report.LinksCreated = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest text %d: replace links: %w", textID, err)
	}

	// Annotations are overwritten wholesale per sentence and carry no
	// references into the link set, so a failure here is logged and the
	// committed links stand.
	for _, sentence := range doc.Sentences {
		if _, err := s.syntax.Annotate(ctx, textID, sentence.Number, sentence.Text, dependencyTokens(sentence)); err != nil {
			s.log.WarnContext(ctx, "sentence annotation failed",
				slog.Int64("text_id", textID),
				slog.Int("sentence", sentence.Number),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log.InfoContext(ctx, "text ingested",
		slog.Int64("text_id", textID),
		slog.Int("sentences", report.Sentences),
		slog.Int("links", report.LinksCreated),
		slog.Int("entries_created", report.EntriesCreated),
		slog.Int("ambiguities", len(report.Ambiguities)),
	)

	return report, nil
}

// buildSentenceLinks resolves one sentence's tokens into link rows.
// Positions restart at 1 per sentence; punctuation links carry a null
// entry reference.
func (s *Service) buildSentenceLinks(ctx context.Context, sentence analyzer.Sentence, report *Report) ([]domain.TokenLink, error) {
	roles := positionRoles(sentence)

	links := make([]domain.TokenLink, 0, len(sentence.Tokens))
	for i, tok := range sentence.Tokens {
		position := tok.Position
		if position == 0 {
			position = i + 1
		}

		link := domain.TokenLink{
			SentenceNumber:     sentence.Number,
			PositionInSentence: position,
			Form:               tok.Text,
			Morphology:         tok.Features(),
		}

		if tok.IsPunct() || domain.IsPunctuationToken(tok.Text) {
			link.IsPunct = true
			links = append(links, link)
			continue
		}

		res, err := s.resolver.Resolve(ctx, lexicon.ResolveInput{
			Surface:   tok.Text,
			LemmaHint: tok.Lemma,
			POS:       domain.PartOfSpeechFromUPOS(tok.UPOS),
			Features:  tok.Features(),
			Morph:     tok.Morph,
		})
		if err != nil {
			return nil, err
		}

		if res.Created {
			report.EntriesCreated++
		}
		if res.Diagnostic != nil {
			report.Ambiguities = append(report.Ambiguities, *res.Diagnostic)
		}

		id := res.Word.ID
		link.WordID = &id
		if role, ok := roles[position]; ok {
			r := role
			link.SyntacticRole = &r
		}

		links = append(links, link)
	}

	return links, nil
}

// positionRoles inverts the projected role groups into a per-position map.
func positionRoles(sentence analyzer.Sentence) map[int]domain.SyntaxRole {
	groups := syntax.Project(dependencyTokens(sentence))
	roles := make(map[int]domain.SyntaxRole)
	for role, positions := range groups {
		for _, p := range positions {
			roles[p] = role
		}
	}
	return roles
}

func dependencyTokens(sentence analyzer.Sentence) []domain.DependencyToken {
	tokens := make([]domain.DependencyToken, 0, len(sentence.Tokens))
	for _, tok := range sentence.Tokens {
		tokens = append(tokens, domain.DependencyToken{
			Position: tok.Position,
			Text:     tok.Text,
			Lemma:    tok.Lemma,
			UPOS:     tok.UPOS,
			Deprel:   tok.Deprel,
			Head:     tok.Head,
			Morph:    tok.Morph,
		})
	}
	return tokens
}
