package syntax

import (
	"strings"

	"github.com/verba-app/verba-backend/internal/domain"
)

// dependencyToRole maps Universal Dependencies relation labels to
// pedagogical roles.
var dependencyToRole = map[string]domain.SyntaxRole{
	"nsubj":  domain.RoleSubject,
	"csubj":  domain.RoleSubject,
	"root":   domain.RolePredicate,
	"cop":    domain.RolePredicate,
	"aux":    domain.RolePredicate,
	"obj":    domain.RoleDirectObject,
	"ccomp":  domain.RoleDirectObject,
	"iobj":   domain.RoleIndirectObject,
	"obl":    domain.RoleComplement,
	"advmod": domain.RoleComplement,
	"advcl":  domain.RoleComplement,
	"amod":   domain.RoleModifier,
	"nmod":   domain.RoleModifier,
	"nummod": domain.RoleModifier,
	"det":    domain.RoleDeterminer,
	"appos":  domain.RoleApposition,
	"cc":     domain.RoleConjunction,
	"mark":   domain.RoleConjunction,
	"case":   domain.RolePreposition,
}

// Project assigns each token exactly one role: the static table first, then
// a coarse substring heuristic for unmapped labels, then the explicit other
// bucket. Tokens are never dropped.
func Project(tokens []domain.DependencyToken) domain.RoleGroups {
	groups := make(domain.RoleGroups)
	for _, tok := range tokens {
		role := roleFor(tok.Deprel)
		groups[role] = append(groups[role], tok.Position)
	}
	return groups
}

func roleFor(deprel string) domain.SyntaxRole {
	label := strings.ToLower(deprel)
	// subtyped labels like nsubj:pass resolve through their base relation
	if base, _, ok := strings.Cut(label, ":"); ok {
		if role, found := dependencyToRole[base]; found {
			return role
		}
	}
	if role, found := dependencyToRole[label]; found {
		return role
	}

	switch {
	case strings.Contains(label, "subj"):
		return domain.RoleSubject
	case strings.Contains(label, "obj"):
		return domain.RoleDirectObject
	case strings.Contains(label, "mod"):
		return domain.RoleModifier
	}

	return domain.RoleOther
}
