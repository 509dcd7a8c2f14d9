package search

import (
	"strings"

	"notenav/pkg/types"
)

// TokenKind discriminates the filter token forms.
type TokenKind int

const (
	TokenTerm        TokenKind = iota // matches name substring or any tag substring
	TokenPath                         // path: prefix, matches path substring
	TokenExt                          // ext: prefix, matches the file extension
	TokenTag                          // tag: or # prefix, matches a normalized tag exactly
	TokenTagPresence                  // bare '#', matches any file that has tags
)

// Token is one parsed filter criterion.
type Token struct {
	Kind  TokenKind
	Value string // lower-cased
}

// Query is a parsed token filter. Parse once and reuse across pipeline
// passes; parsing is deterministic for a given raw string.
type Query struct {
	Raw    string
	Tokens []Token
}

// Parse splits a raw query into filter tokens. Empty and
// whitespace-only queries yield a query with no active criterion.
func Parse(raw string) Query {
	q := Query{Raw: raw}
	for _, field := range strings.Fields(strings.ToLower(raw)) {
		switch {
		case field == "#":
			q.Tokens = append(q.Tokens, Token{Kind: TokenTagPresence})
		case strings.HasPrefix(field, "#"):
			q.Tokens = append(q.Tokens, Token{Kind: TokenTag, Value: types.NormalizeTag(field)})
		case strings.HasPrefix(field, "tag:"):
			if v := types.NormalizeTag(strings.TrimPrefix(field, "tag:")); v != "" {
				q.Tokens = append(q.Tokens, Token{Kind: TokenTag, Value: v})
			}
		case strings.HasPrefix(field, "path:"):
			if v := strings.TrimPrefix(field, "path:"); v != "" {
				q.Tokens = append(q.Tokens, Token{Kind: TokenPath, Value: v})
			}
		case strings.HasPrefix(field, "ext:"):
			if v := strings.TrimPrefix(strings.TrimPrefix(field, "ext:"), "."); v != "" {
				q.Tokens = append(q.Tokens, Token{Kind: TokenExt, Value: v})
			}
		default:
			q.Tokens = append(q.Tokens, Token{Kind: TokenTerm, Value: field})
		}
	}
	return q
}

// Empty reports whether the query carries no active criterion.
func (q Query) Empty() bool {
	return len(q.Tokens) == 0
}

// NeedsTags reports whether evaluating the query can ever require tag
// lookups. Path- and ext-only queries never touch tags.
func (q Query) NeedsTags() bool {
	for _, tok := range q.Tokens {
		switch tok.Kind {
		case TokenTag, TokenTagPresence, TokenTerm:
			return true
		}
	}
	return false
}

// Terms returns the bare term values, used for highlight metadata.
func (q Query) Terms() []string {
	var terms []string
	for _, tok := range q.Tokens {
		if tok.Kind == TokenTerm {
			terms = append(terms, tok.Value)
		}
	}
	return terms
}

// Match evaluates every token against one file. All tokens must match.
// nameLower and pathLower are the pre-lowered name and path; tags is
// called at most once, and only when a token actually needs the tag list.
func (q Query) Match(nameLower, pathLower, ext string, tags func() []string) bool {
	var tagList []string
	tagsLoaded := false
	loadTags := func() []string {
		if !tagsLoaded {
			tagList = tags()
			tagsLoaded = true
		}
		return tagList
	}

	for _, tok := range q.Tokens {
		switch tok.Kind {
		case TokenTerm:
			if strings.Contains(nameLower, tok.Value) {
				continue
			}
			if !tagMatches(loadTags(), tok.Value, false) {
				return false
			}
		case TokenPath:
			if !strings.Contains(pathLower, tok.Value) {
				return false
			}
		case TokenExt:
			if ext != tok.Value {
				return false
			}
		case TokenTag:
			if !tagMatches(loadTags(), tok.Value, true) {
				return false
			}
		case TokenTagPresence:
			if len(loadTags()) == 0 {
				return false
			}
		}
	}
	return true
}

// NameSpans returns the match spans of the query's bare terms inside a
// lower-cased name, for highlight rendering.
func (q Query) NameSpans(nameLower string) []types.MatchSpan {
	var spans []types.MatchSpan
	for _, tok := range q.Tokens {
		if tok.Kind != TokenTerm {
			continue
		}
		from := 0
		for {
			i := strings.Index(nameLower[from:], tok.Value)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, types.MatchSpan{Start: start, End: start + len(tok.Value)})
			from = start + len(tok.Value)
		}
	}
	return spans
}

func tagMatches(tags []string, value string, exact bool) bool {
	for _, tag := range tags {
		if exact {
			if tag == value {
				return true
			}
		} else if strings.Contains(tag, value) {
			return true
		}
	}
	return false
}
