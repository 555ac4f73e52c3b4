package bot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

const (
	PARSEID_OK                = iota
	PARSEID_NO_BOT_PREFIX     = iota
	PARSEID_NO_COMMAND        = iota
	PARSEID_UNBALANCED_QUOTES = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:        "No command provided",
	PARSEID_UNBALANCED_QUOTES: "Quotes in `%s` are not balanced",
}

type ParseResult struct {
	parseid      int
	command      string
	arguments    []string
	rest         string
	errorMessage string
}

// Parse a message addressed to the bot: the prefix, a command and
// its arguments. Arguments are split on spaces unless quoted
func Parse(prefix string, message string) ParseResult {

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	body := strings.TrimSpace(message[len(prefix):])
	if body == "" {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString, rest, _ := strings.Cut(body, " ")
	rest = strings.TrimSpace(rest)

	arguments, ok := Tokenize(rest)
	if !ok {
		parseid := PARSEID_UNBALANCED_QUOTES
		return ParseResult{parseid: parseid, command: strings.ToLower(commandString), errorMessage: fmt.Sprintf(errorMessages[parseid], rest)}
	}

	return ParseResult{parseid: PARSEID_OK, command: strings.ToLower(commandString), arguments: arguments, rest: rest}
}

// Split the input on whitespace, keeping double quoted sections together.
// Quotes are removed from the result, also when they start in the middle of
// a word as in key="some value". Returns false if a quote is left open
func Tokenize(input string) ([]string, bool) {

	tokens := []string{}
	var current strings.Builder
	inQuotes := false
	inToken := false
	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			inToken = true
		case unicode.IsSpace(r) && !inQuotes:
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inQuotes {
		return nil, false
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, true
}

// Split key=value arguments. Arguments without an equal sign are returned apart
func KeyValues(arguments []string) (map[string]string, []string) {
	values := map[string]string{}
	positional := []string{}
	for _, argument := range arguments {
		key, value, found := strings.Cut(argument, "=")
		if !found {
			positional = append(positional, argument)
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return values, positional
}
