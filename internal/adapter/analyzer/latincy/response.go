package latincy

import "github.com/verba-app/verba-backend/internal/analyzer"

// apiResponse mirrors the sidecar's JSON shape.
type apiResponse struct {
	Sentences []apiSentence `json:"sentences"`
}

type apiSentence struct {
	Text   string     `json:"text"`
	Tokens []apiToken `json:"tokens"`
}

type apiToken struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"`
	Morph string `json:"morph"`
	Punct bool   `json:"is_punct"`
}

// mapAPIResponse converts the sidecar payload into port types. Sentence
// numbers are assigned 1-based in document order.
func mapAPIResponse(resp apiResponse) *analyzer.Document {
	doc := &analyzer.Document{
		Sentences: make([]analyzer.Sentence, 0, len(resp.Sentences)),
	}

	for i, s := range resp.Sentences {
		sentence := analyzer.Sentence{
			Number: i + 1,
			Text:   s.Text,
			Tokens: make([]analyzer.Token, 0, len(s.Tokens)),
		}
		for _, tok := range s.Tokens {
			sentence.Tokens = append(sentence.Tokens, analyzer.Token{
				Position: tok.ID,
				Text:     tok.Text,
				Lemma:    tok.Lemma,
				UPOS:     tok.POS,
				Deprel:   tok.Dep,
				Head:     tok.Head,
				Morph:    tok.Morph,
				Punct:    tok.Punct,
			})
		}
		doc.Sentences = append(doc.Sentences, sentence)
	}

	return doc
}
