package backtrace

import (
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

const (
	// ErrorMarker starts the top-level error line of a failed script.
	ErrorMarker = "[ERROR]"
	lineAnchor  = " line "
	fileAnchor  = " at `"
	urlAnchor   = " at <"
)

// isChainLine reports whether a line carries an inclusion frame.
func isChainLine(line string) bool {
	return strings.Contains(line, lineAnchor)
}

// isURLLine reports whether a line is the trailing page URL ending the chain.
func isURLLine(line string) bool {
	return strings.Contains(strings.TrimSpace(line), urlAnchor)
}

// parseErrorLine parses "[ERROR] line <n>[:<col>]..." into the implicit first frame.
func parseErrorLine(line string) (*Frame, error) {
	cursor := parsly.NewCursor("", []byte(line), 0)
	if cursor.MatchOne(errorMarkerToken).Code != errorMarkerCode {
		return nil, cursor.NewError(errorMarkerToken)
	}
	if cursor.MatchAfterOptional(whitespaceToken, lineKeywordToken).Code != lineKeywordCode {
		return nil, cursor.NewError(lineKeywordToken)
	}
	frame := &Frame{}
	if err := parsePosition(cursor, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// parseChainLine parses "... at `<file>` line <n>[:<col>]..." into a frame.
func parseChainLine(line string) (*Frame, error) {
	if offset := strings.Index(line, fileAnchor); offset != -1 {
		line = line[offset:]
	}
	cursor := parsly.NewCursor("", []byte(line), 0)
	if cursor.MatchAfterOptional(whitespaceToken, atKeywordToken).Code != atKeywordCode {
		return nil, cursor.NewError(atKeywordToken)
	}
	if cursor.MatchAfterOptional(whitespaceToken, backtickToken).Code != backtickCode {
		return nil, cursor.NewError(backtickToken)
	}
	frame := &Frame{}
	matched := cursor.MatchOne(quotedPathToken)
	if matched.Code == quotedPathCode {
		frame.File = matched.Text(cursor)
	}
	if cursor.MatchOne(backtickToken).Code != backtickCode {
		return nil, cursor.NewError(backtickToken)
	}
	if cursor.MatchAfterOptional(whitespaceToken, lineKeywordToken).Code != lineKeywordCode {
		return nil, cursor.NewError(lineKeywordToken)
	}
	if err := parsePosition(cursor, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func parsePosition(cursor *parsly.Cursor, frame *Frame) error {
	matched := cursor.MatchAfterOptional(whitespaceToken, numberToken)
	if matched.Code != numberCode {
		return cursor.NewError(numberToken)
	}
	frame.Line, _ = strconv.Atoi(matched.Text(cursor))
	if cursor.MatchOne(colonToken).Code != colonCode {
		return nil
	}
	matched = cursor.MatchOne(numberToken)
	if matched.Code == numberCode {
		column, _ := strconv.Atoi(matched.Text(cursor))
		frame.Column = &column
	}
	return nil
}
