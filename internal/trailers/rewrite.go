package trailers

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	trailerLineTemplateConstant = "%s: %s"
	lineSeparatorConstant       = "\n"
	trailingNewlineConstant     = "\n"
	blankLineConstant           = ""
)

// trailerLinePattern matches a single trailer line. The token starts with a
// letter and continues with letters, digits, or dashes; the value is the
// remainder after the ": " separator.
var trailerLinePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*): (.*)$`)

// Trailer is one token/value pair rendered as a "Token: value" line.
type Trailer struct {
	Token string
	Value string
}

// Line renders the trailer as a single message line.
func (trailer Trailer) Line() string {
	return fmt.Sprintf(trailerLineTemplateConstant, trailer.Token, trailer.Value)
}

// parseTrailerLine extracts the token and value from a candidate line.
func parseTrailerLine(line string) (Trailer, bool) {
	submatches := trailerLinePattern.FindStringSubmatch(line)
	if submatches == nil {
		return Trailer{}, false
	}
	return Trailer{Token: submatches[1], Value: submatches[2]}, true
}

// Rewrite applies replace-by-token trailer semantics to a commit message.
//
// The trailer block is the final run of consecutive non-blank lines that each
// match "Token: value", provided the run is the entire message or is preceded
// by a blank line. Within the block, exact duplicate lines are collapsed to
// their first occurrence, every line carrying the supplied token is removed,
// and one line per supplied value is appended in order. The result always ends
// with exactly one newline; when the block is non-empty and a body exists,
// exactly one blank line separates the two.
//
// An empty values slice deletes the token's lines without adding replacements.
func Rewrite(message string, token string, values []string) string {
	bodyLines, blockTrailers := splitMessage(message)

	blockTrailers = deduplicateTrailers(blockTrailers)
	blockTrailers = removeToken(blockTrailers, token)
	for _, value := range values {
		blockTrailers = append(blockTrailers, Trailer{Token: token, Value: value})
	}

	return renderMessage(bodyLines, blockTrailers)
}

// splitMessage separates a commit message into body lines and trailer-block
// entries. Trailing blank lines are discarded so the result can be rendered
// with normalized spacing.
func splitMessage(message string) ([]string, []Trailer) {
	lines := strings.Split(message, lineSeparatorConstant)
	for len(lines) > 0 && isBlankLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, nil
	}

	blockStart := len(lines)
	for blockStart > 0 {
		if _, matches := parseTrailerLine(lines[blockStart-1]); !matches {
			break
		}
		blockStart--
	}

	// A matching suffix only forms a trailer block when it spans the whole
	// message or follows a blank separator line.
	if blockStart == len(lines) {
		return lines, nil
	}
	if blockStart > 0 && !isBlankLine(lines[blockStart-1]) {
		return lines, nil
	}

	blockTrailers := make([]Trailer, 0, len(lines)-blockStart)
	for _, line := range lines[blockStart:] {
		trailer, _ := parseTrailerLine(line)
		blockTrailers = append(blockTrailers, trailer)
	}

	bodyLines := lines[:blockStart]
	for len(bodyLines) > 0 && isBlankLine(bodyLines[len(bodyLines)-1]) {
		bodyLines = bodyLines[:len(bodyLines)-1]
	}

	return bodyLines, blockTrailers
}

// deduplicateTrailers removes exact duplicate trailer lines, keeping the first
// occurrence's position. This normalizes pre-existing duplication regardless of
// which token is being rewritten.
func deduplicateTrailers(blockTrailers []Trailer) []Trailer {
	seen := make(map[Trailer]struct{}, len(blockTrailers))
	deduplicated := make([]Trailer, 0, len(blockTrailers))
	for _, trailer := range blockTrailers {
		if _, alreadySeen := seen[trailer]; alreadySeen {
			continue
		}
		seen[trailer] = struct{}{}
		deduplicated = append(deduplicated, trailer)
	}
	return deduplicated
}

func removeToken(blockTrailers []Trailer, token string) []Trailer {
	retained := make([]Trailer, 0, len(blockTrailers))
	for _, trailer := range blockTrailers {
		if trailer.Token == token {
			continue
		}
		retained = append(retained, trailer)
	}
	return retained
}

func renderMessage(bodyLines []string, blockTrailers []Trailer) string {
	renderedLines := make([]string, 0, len(bodyLines)+len(blockTrailers)+1)
	renderedLines = append(renderedLines, bodyLines...)

	if len(blockTrailers) > 0 {
		if len(bodyLines) > 0 {
			renderedLines = append(renderedLines, blankLineConstant)
		}
		for _, trailer := range blockTrailers {
			renderedLines = append(renderedLines, trailer.Line())
		}
	}

	return strings.Join(renderedLines, lineSeparatorConstant) + trailingNewlineConstant
}

func isBlankLine(line string) bool {
	return len(strings.TrimSpace(line)) == 0
}
