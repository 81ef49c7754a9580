package backtrace

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota
	errorMarkerCode
	lineKeywordCode
	atKeywordCode
	backtickCode
	quotedPathCode
	numberCode
	colonCode
)

var (
	whitespaceToken  = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	errorMarkerToken = parsly.NewToken(errorMarkerCode, ErrorMarker, matcher.NewFragment(ErrorMarker))
	lineKeywordToken = parsly.NewToken(lineKeywordCode, "line", matcher.NewFragment("line"))
	atKeywordToken   = parsly.NewToken(atKeywordCode, "at", matcher.NewFragment("at"))
	backtickToken    = parsly.NewToken(backtickCode, "`", matcher.NewByte('`'))
	quotedPathToken  = parsly.NewToken(quotedPathCode, "Path", &quotedPathMatcher{})
	numberToken      = parsly.NewToken(numberCode, "Number", &numberMatcher{})
	colonToken       = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
)

// quotedPathMatcher matches everything up to the closing backtick.
type quotedPathMatcher struct{}

func (m *quotedPathMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if input[i] == '`' || input[i] == '\n' {
			break
		}
		matched++
	}
	return matched
}

type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if input[i] < '0' || input[i] > '9' {
			break
		}
		matched++
	}
	return matched
}
