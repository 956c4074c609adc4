// Package shell parses and runs plsh scripts.
//
// A script is a sequence of statements separated by newlines or semicolons.
// Each statement is either an assignment (NAME=VALUE) or a pipeline of
// commands joined by '|'. Words are made of bare text, double quoted strings
// and $NAME references. Everything after a '#' that starts a word is a
// comment.
//
// Statements are parsed and run one at a time, straight from the input
// stream; nothing after the current statement is read before it completes.
package shell

import (
	"strconv"
	"strings"

	"github.com/josephlewis42/plsh/core/cursor"
)

var (
	// wordBreak ends a bare word.
	wordBreak = cursor.Blank.Union(cursor.Chars("\n;|"))
	// wordSpecial starts a part of a word that isn't copied literally.
	wordSpecial = cursor.Chars("\"$")
	bareStop    = wordBreak.Union(wordSpecial)
	stringStop  = cursor.Chars("\"\\$\n")

	// assignProbeStop ends the search for the '=' of an assignment.
	assignProbeStop = cursor.Blank.Union(cursor.Chars("\n;|\"$#"))
	nameStop        = cursor.Blank.Union(cursor.Chars("=;\n"))
	nameChars       = cursor.Func(isNameChar)

	// operators can't start a statement.
	operators = cursor.Chars("|&<>(){}")
)

func isNameStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || ('0' <= r && r <= '9')
}

// IsName returns true if s is a valid variable name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isNameStart(r) {
			return false
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

// parseStart parses and runs the next statement. It returns true once the
// script is exhausted.
func (in *Interpreter) parseStart() (bool, error) {
	switch c := in.cur.Peek(); {
	case c == cursor.EOF:
		if err := in.cur.Err(); err != nil {
			return true, in.ioError(err)
		}
		return true, nil
	case c == '\n' || c == ';':
		in.cur.Next()
	case cursor.Blank.Contains(c):
		in.cur.SkipSpace(true)
	case c == '#':
		in.cur.SkipLineComment()
	case operators.Contains(c):
		return false, in.syntaxErrorf(in.cur.Line(), "unexpected %q", c)
	case isNameStart(c):
		return false, in.parseAction()
	default:
		return false, in.parseCommand()
	}
	return false, nil
}

// parseAction parses a statement that starts with a name, which is either an
// assignment or a command.
func (in *Interpreter) parseAction() error {
	if in.cur.LookaheadContains('=', assignProbeStop) {
		return in.parseAssignment()
	}
	return in.parseCommand()
}

func (in *Interpreter) parseAssignment() error {
	line := in.cur.Line()
	name, _ := in.cur.ConsumeUntil(nameStop)
	if !IsName(name) {
		return in.syntaxErrorf(line, "malformed assignment: invalid variable name %q", name)
	}
	in.cur.Next() // '='
	if cursor.Blank.Contains(in.cur.Peek()) {
		return in.syntaxErrorf(line, "malformed assignment: whitespace after '=' in %s", name)
	}

	value, err := in.parseValue()
	if err != nil {
		return err
	}
	in.stack.Bind(name, value)
	return nil
}

// parseValue evaluates the right hand side of an assignment. A single word is
// its own value. Anything else is run as a pipeline and its output, minus
// trailing newlines, is the value.
func (in *Interpreter) parseValue() (string, error) {
	line := in.cur.Line()
	words, term, err := in.parseWords()
	if err != nil {
		return "", err
	}

	if term != '|' && len(words) <= 1 {
		return strings.Join(words, ""), nil
	}

	res, err := in.pipeline(line, words, term, true)
	if err != nil {
		return "", err
	}
	defer res.Close()

	text, err := res.Text()
	if err != nil {
		return "", in.errorf(KindIO, line, err, "reading pipeline output: %v", err)
	}
	return strings.TrimRight(text, "\n"), nil
}

// parseCommand parses a pipeline and runs it with its output going to the
// interpreter's stdout.
func (in *Interpreter) parseCommand() error {
	line := in.cur.Line()
	words, term, err := in.parseWords()
	if err != nil {
		return err
	}
	if len(words) == 0 && term != '|' {
		return nil
	}

	res, err := in.pipeline(line, words, term, false)
	if err != nil {
		return err
	}
	return res.Close()
}

// parseWords collects the words of a single command. It stops at the end of
// the statement or at a '|', which is left unconsumed and returned.
func (in *Interpreter) parseWords() ([]string, rune, error) {
	var words []string
	for {
		in.cur.SkipSpace(false)
		switch c := in.cur.Peek(); c {
		case cursor.EOF:
			if err := in.cur.Err(); err != nil {
				return nil, c, in.ioError(err)
			}
			return words, c, nil
		case '\n', ';', '|':
			return words, c, nil
		case '#':
			in.cur.SkipLineComment()
			continue
		}

		if in.MaxArgs > 0 && len(words) >= in.MaxArgs {
			return nil, 0, in.errorf(KindLimit, in.cur.Line(), nil, "more than %d arguments", in.MaxArgs)
		}
		word, err := in.parseWord()
		if err != nil {
			return nil, 0, err
		}
		words = append(words, word)
	}
}

// parseWord parses one word, joining its bare, quoted and referenced parts.
func (in *Interpreter) parseWord() (string, error) {
	var sb strings.Builder
	for {
		switch c := in.cur.Peek(); {
		case c == '"':
			s, err := in.parseString()
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case c == '$':
			sb.WriteString(in.parseReference())
		case c == cursor.EOF || wordBreak.Contains(c):
			return sb.String(), nil
		default:
			text, _ := in.cur.ConsumeUntil(bareStop)
			sb.WriteString(text)
		}
	}
}

// parseString parses a double quoted string, starting at the opening quote.
func (in *Interpreter) parseString() (string, error) {
	line := in.cur.Line()
	in.cur.Next() // '"'

	var sb strings.Builder
	for {
		text, c := in.cur.ConsumeUntil(stringStop)
		sb.WriteString(text)

		switch c {
		case '"':
			in.cur.Next()
			return sb.String(), nil

		case '$':
			sb.WriteString(in.parseReference())

		case '\\':
			in.cur.Next()
			switch esc := in.cur.Peek(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"', '*', '$':
				sb.WriteRune(esc)
			case '\n', cursor.EOF:
				continue
			default:
				sb.WriteByte('\\')
				cursor.WriteRune(&sb, esc)
			}
			in.cur.Next()

		default:
			if err := in.cur.Err(); err != nil {
				return "", in.ioError(err)
			}
			return "", in.syntaxErrorf(line, "unterminated string literal")
		}
	}
}

// parseReference expands a $ reference, starting at the '$'.
func (in *Interpreter) parseReference() string {
	in.cur.Next() // '$'

	switch c := in.cur.Peek(); {
	case c == '?':
		in.cur.Next()
		return strconv.Itoa(in.stack.LastExitCode())
	case c == '$':
		in.cur.Next()
		return strconv.Itoa(in.pid)
	case '0' <= c && c <= '9':
		in.cur.Next()
		root := in.stack.Root()
		if root == nil {
			return ""
		}
		args := root.Args()
		if idx := int(c - '0'); idx < len(args) {
			return args[idx]
		}
		return ""
	case isNameStart(c):
		name, _ := in.cur.ConsumeUntil(nameChars.Complement())
		return in.stack.Lookup(name)
	default:
		return "$"
	}
}

func (in *Interpreter) syntaxErrorf(line int, format string, args ...interface{}) error {
	return in.errorf(KindSyntax, line, nil, format, args...)
}

func (in *Interpreter) ioError(err error) error {
	return in.errorf(KindIO, in.cur.Line(), err, "reading script: %v", err)
}
