package bot

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/censo/censobot/internal/domain/search"
)

// Input bounds. Oversized messages are rejected whole, never truncated and
// then parsed; overlong prefix values are dropped for that prefix only.
const (
	maxCommandLen = 200
	maxPrefixLen  = 50
)

const searchTrigger = "/buscar"

// Prefix markers inside a search command.
const (
	prefixRecord = "reg:"
	prefixBed    = "leito:"
	prefixWard   = "enf:"
)

// Command is the typed result of parsing one message.
type Command interface{ isCommand() }

// SearchCommand asks for a ranked patient search.
type SearchCommand struct {
	Query search.Query
}

// SelectionCommand picks one entry from the room's pending result set.
type SelectionCommand struct {
	Index int
}

// Unrecognized is everything else; it earns the help reply.
type Unrecognized struct{}

func (SearchCommand) isCommand()    {}
func (SelectionCommand) isCommand() {}
func (Unrecognized) isCommand()     {}

// Parse turns raw message text into exactly one Command. Pure: no I/O, no
// side effects.
func Parse(text string) Command {
	if utf8.RuneCountInString(text) > maxCommandLen {
		return Unrecognized{}
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unrecognized{}
	}

	if idx, ok := parseSelection(trimmed); ok {
		return SelectionCommand{Index: idx}
	}

	fields := strings.Fields(trimmed)
	if !strings.EqualFold(fields[0], searchTrigger) {
		return Unrecognized{}
	}
	return SearchCommand{Query: parseQuery(fields[1:])}
}

// parseSelection accepts a bare positive integer and nothing else.
func parseSelection(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseQuery splits the arguments after the trigger into prefix filters and
// free-text name tokens. Each prefix keeps its first valid occurrence; a
// value past the length cap is ignored for that prefix alone.
func parseQuery(args []string) search.Query {
	var q search.Query
	for _, arg := range args {
		switch {
		case hasFoldPrefix(arg, prefixRecord):
			setPrefix(&q.RecordNumber, arg[len(prefixRecord):])
		case hasFoldPrefix(arg, prefixBed):
			setPrefix(&q.Bed, arg[len(prefixBed):])
		case hasFoldPrefix(arg, prefixWard):
			setPrefix(&q.Ward, arg[len(prefixWard):])
		default:
			q.NameTokens = append(q.NameTokens, arg)
		}
	}
	return q
}

func setPrefix(dst *string, value string) {
	if *dst != "" || value == "" {
		return
	}
	if utf8.RuneCountInString(value) > maxPrefixLen {
		return
	}
	*dst = value
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
