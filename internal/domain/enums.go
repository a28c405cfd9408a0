package domain

// PartOfSpeech represents the grammatical category of a lexicon entry.
// Proper nouns are deliberately distinct from common nouns: the resolver
// never treats NOUN and PROPER_NOUN as compatible candidates.
type PartOfSpeech string

const (
	PartOfSpeechNoun         PartOfSpeech = "NOUN"
	PartOfSpeechProperNoun   PartOfSpeech = "PROPER_NOUN"
	PartOfSpeechVerb         PartOfSpeech = "VERB"
	PartOfSpeechAdjective    PartOfSpeech = "ADJECTIVE"
	PartOfSpeechAdverb       PartOfSpeech = "ADVERB"
	PartOfSpeechPronoun      PartOfSpeech = "PRONOUN"
	PartOfSpeechPreposition  PartOfSpeech = "PREPOSITION"
	PartOfSpeechConjunction  PartOfSpeech = "CONJUNCTION"
	PartOfSpeechInterjection PartOfSpeech = "INTERJECTION"
	PartOfSpeechNumeral      PartOfSpeech = "NUMERAL"
	PartOfSpeechDeterminer   PartOfSpeech = "DETERMINER"
	PartOfSpeechParticle     PartOfSpeech = "PARTICLE"
	PartOfSpeechOther        PartOfSpeech = "OTHER"
)

func (p PartOfSpeech) String() string { return string(p) }

func (p PartOfSpeech) IsValid() bool {
	switch p {
	case PartOfSpeechNoun, PartOfSpeechProperNoun, PartOfSpeechVerb,
		PartOfSpeechAdjective, PartOfSpeechAdverb, PartOfSpeechPronoun,
		PartOfSpeechPreposition, PartOfSpeechConjunction, PartOfSpeechInterjection,
		PartOfSpeechNumeral, PartOfSpeechDeterminer, PartOfSpeechParticle,
		PartOfSpeechOther:
		return true
	}
	return false
}

// uposToPartOfSpeech maps Universal POS tags from the analyzer to domain values.
var uposToPartOfSpeech = map[string]PartOfSpeech{
	"NOUN":  PartOfSpeechNoun,
	"PROPN": PartOfSpeechProperNoun,
	"VERB":  PartOfSpeechVerb,
	"AUX":   PartOfSpeechVerb,
	"ADJ":   PartOfSpeechAdjective,
	"ADV":   PartOfSpeechAdverb,
	"PRON":  PartOfSpeechPronoun,
	"ADP":   PartOfSpeechPreposition,
	"SCONJ": PartOfSpeechConjunction,
	"CCONJ": PartOfSpeechConjunction,
	"INTJ":  PartOfSpeechInterjection,
	"NUM":   PartOfSpeechNumeral,
	"DET":   PartOfSpeechDeterminer,
	"PART":  PartOfSpeechParticle,
}

// PartOfSpeechFromUPOS converts a Universal POS tag (NOUN, PROPN, AUX, ...)
// to a domain PartOfSpeech. Unknown tags map to PartOfSpeechOther.
func PartOfSpeechFromUPOS(upos string) PartOfSpeech {
	if p, ok := uposToPartOfSpeech[upos]; ok {
		return p
	}
	return PartOfSpeechOther
}

// EntryStatus represents the curation lifecycle of a lexicon entry.
type EntryStatus string

const (
	// EntryStatusProvisional marks entries auto-created by the resolver
	// without a human-authored gloss.
	EntryStatusProvisional EntryStatus = "provisional"
	// EntryStatusNeedsReview marks entries flagged by reconciliation for
	// human curation (ambiguity, failed orphan repair).
	EntryStatusNeedsReview EntryStatus = "needs_review"
	// EntryStatusActive marks curated entries.
	EntryStatusActive EntryStatus = "active"
)

func (s EntryStatus) String() string { return string(s) }

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusProvisional, EntryStatusNeedsReview, EntryStatusActive:
		return true
	}
	return false
}

// statusRank orders statuses for merge survivor selection: higher wins.
func (s EntryStatus) Rank() int {
	switch s {
	case EntryStatusActive:
		return 2
	case EntryStatusNeedsReview:
		return 1
	default:
		return 0
	}
}

// SyntaxRole is the closed pedagogical role vocabulary sentences are
// annotated with. Fine-grained dependency labels from the analyzer are
// projected onto these.
type SyntaxRole string

const (
	RoleSubject        SyntaxRole = "subject"
	RolePredicate      SyntaxRole = "predicate"
	RoleDirectObject   SyntaxRole = "direct_object"
	RoleIndirectObject SyntaxRole = "indirect_object"
	RoleModifier       SyntaxRole = "modifier"
	RoleDeterminer     SyntaxRole = "determiner"
	RoleApposition     SyntaxRole = "apposition"
	RoleConjunction    SyntaxRole = "conjunction"
	RolePreposition    SyntaxRole = "preposition"
	RoleComplement     SyntaxRole = "complement"
	RoleOther          SyntaxRole = "other"
)

func (r SyntaxRole) String() string { return string(r) }

func (r SyntaxRole) IsValid() bool {
	switch r {
	case RoleSubject, RolePredicate, RoleDirectObject, RoleIndirectObject,
		RoleModifier, RoleDeterminer, RoleApposition, RoleConjunction,
		RolePreposition, RoleComplement, RoleOther:
		return true
	}
	return false
}
