// Package scoring holds the regatta scoring engine: scoring-code policy,
// race result normalization, discards and series ranking. Everything here is
// pure computation over rows fetched up front; persistence lives in store and
// orchestration in service.
package scoring

import "strings"

// Code is a scoring code such as DNF or RDG. The empty code means the boat
// finished and scores its position.
type Code string

// Built-in codes.
const (
	CodeDNC Code = "DNC"
	CodeDNF Code = "DNF"
	CodeDNS Code = "DNS"
	CodeOCS Code = "OCS"
	CodeUFD Code = "UFD"
	CodeBFD Code = "BFD"
	CodeDSQ Code = "DSQ"
	CodeRET Code = "RET"
	CodeNSC Code = "NSC"
	CodeDNE Code = "DNE"
	CodeDGM Code = "DGM"

	CodeRDG Code = "RDG"
	CodeDPI Code = "DPI"
	CodeSCP Code = "SCP"
	CodeZFP Code = "ZFP"
)

// Kind classifies how a code turns into points.
type Kind int

const (
	// KindNPlusOne scores finishers+1 and moves the boat behind every finisher.
	KindNPlusOne Kind = iota + 1
	// KindAdjustable scores a value set by the race committee (fixed,
	// operator supplied, or a series average).
	KindAdjustable
)

func (k Kind) String() string {
	switch k {
	case KindNPlusOne:
		return "n_plus_one"
	case KindAdjustable:
		return "adjustable"
	default:
		return "unknown"
	}
}

type policy struct {
	kind        Kind
	discardable bool
}

var builtinPolicies = map[Code]policy{
	CodeDNC: {KindNPlusOne, true},
	CodeDNF: {KindNPlusOne, true},
	CodeDNS: {KindNPlusOne, true},
	CodeOCS: {KindNPlusOne, true},
	CodeUFD: {KindNPlusOne, true},
	CodeBFD: {KindNPlusOne, true},
	CodeDSQ: {KindNPlusOne, true},
	CodeRET: {KindNPlusOne, true},
	CodeNSC: {KindNPlusOne, true},
	// RRS 90.3(b): a DNE or DGM score may not be excluded.
	CodeDNE: {KindNPlusOne, false},
	CodeDGM: {KindNPlusOne, false},

	CodeRDG: {KindAdjustable, true},
	CodeDPI: {KindAdjustable, true},
	CodeSCP: {KindAdjustable, true},
	CodeZFP: {KindAdjustable, true},
}

// ParseCode canonicalises user input ("dnf " -> DNF).
func ParseCode(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// IsBuiltin reports whether the code is known without any table override.
func (c Code) IsBuiltin() bool {
	_, ok := builtinPolicies[c]
	return ok
}

// Kind returns the scoring kind. Custom codes are adjustable.
func (c Code) Kind() Kind {
	if p, ok := builtinPolicies[c]; ok {
		return p.kind
	}
	return KindAdjustable
}

// MovesToBack reports whether a boat with this code gives up its ranked
// position and is placed after all finishers.
func (c Code) MovesToBack() bool {
	return c != "" && c.Kind() == KindNPlusOne
}

// Discardable reports whether a result carrying this code may be excluded by
// the discard engine. The classification is fixed and never overridden per
// class.
func (c Code) Discardable() bool {
	if c == "" {
		return true
	}
	if p, ok := builtinPolicies[c]; ok {
		return p.discardable
	}
	return true
}

// BuiltinCodes lists every built-in code in a stable order.
func BuiltinCodes() []Code {
	return []Code{
		CodeDNC, CodeDNF, CodeDNS, CodeOCS, CodeUFD, CodeBFD, CodeDSQ,
		CodeRET, CodeNSC, CodeDNE, CodeDGM,
		CodeRDG, CodeDPI, CodeSCP, CodeZFP,
	}
}
