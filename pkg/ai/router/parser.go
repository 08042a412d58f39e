package router

import (
	"strings"
)

// Classifier reply keywords
const (
	ReplyGeneral   = "GENERAL"
	PrefixDetailed = "DETAILED:"
)

// Mode is the kind of context a chat turn is answered with.
type Mode string

const (
	ModeGeneral  Mode = "General"  // whole-profile context
	ModeDetailed Mode = "Detailed" // single-repository context
)

// ReplyKind is the grammar class of a raw classifier reply.
type ReplyKind int

const (
	KindUnparseable ReplyKind = iota
	KindGeneral
	KindDetailed
)

func (k ReplyKind) String() string {
	switch k {
	case KindGeneral:
		return "general"
	case KindDetailed:
		return "detailed"
	default:
		return "unparseable"
	}
}

// ParsedReply is the classifier output reduced to the reply grammar.
type ParsedReply struct {
	Raw  string    // reply as returned by the model
	Kind ReplyKind // GENERAL, DETAILED:<name>, or neither
	Name string    // only set for KindDetailed, as written by the model
}

// Parse reads a classifier reply.
// Grammar (case-insensitive keywords, surrounding whitespace ignored):
//   - GENERAL          → KindGeneral
//   - DETAILED:<name>  → KindDetailed, <name> trimmed and non-empty
//   - anything else    → KindUnparseable
func Parse(reply string) *ParsedReply {
	trimmed := strings.TrimSpace(reply)
	parsed := &ParsedReply{Raw: reply, Kind: KindUnparseable}

	if strings.EqualFold(trimmed, ReplyGeneral) {
		parsed.Kind = KindGeneral
		return parsed
	}

	if len(trimmed) >= len(PrefixDetailed) && strings.EqualFold(trimmed[:len(PrefixDetailed)], PrefixDetailed) {
		name := strings.TrimSpace(trimmed[len(PrefixDetailed):])
		if name != "" {
			parsed.Kind = KindDetailed
			parsed.Name = name
		}
	}

	return parsed
}

// matchName returns the canonical spelling of name among known, compared
// case-insensitively. The first match in list order wins.
func matchName(name string, known []string) (string, bool) {
	for _, k := range known {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}
