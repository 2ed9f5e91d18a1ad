package mailfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// state is the parser mode. It moves from stateHeader to stateBody once
// and never back.
type state int

const (
	stateHeader state = iota
	stateBody
)

func (s state) String() string {
	switch s {
	case stateHeader:
		return "header"
	case stateBody:
		return "body"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Parser accumulates a Record one line at a time.
type Parser struct {
	rec     Record
	state   state
	line    int
	body    strings.Builder
	ignored []string
}

// NewParser returns a parser in header mode.
func NewParser() *Parser {
	return &Parser{state: stateHeader}
}

// ParseLine classifies one line (without its terminator) and applies it.
func (p *Parser) ParseLine(line string) error {
	p.line++
	if p.line == 1 {
		line = strings.TrimPrefix(line, "\ufeff")
	}
	line = strings.TrimSuffix(line, "\r")

	if p.state == stateHeader && isBodyMarker(line) {
		p.state = stateBody
		p.body.WriteString(stripBodyKey(strings.TrimLeft(line, " \t")))
		p.body.WriteByte('\n')
		return nil
	}
	if p.state == stateBody {
		p.body.WriteString(line)
		p.body.WriteByte('\n')
		return nil
	}

	if strings.TrimSpace(line) == "" {
		return nil
	}
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		// The line itself is not echoed: it may be a mistyped password.
		return fmt.Errorf("%w on line %d: expected \"key: value\"", ErrMalformedLine, p.line)
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "server":
		p.rec.Server = strings.TrimSpace(value)
	case "user":
		p.rec.User = strings.TrimSpace(value)
	case "password":
		p.rec.Password = strings.TrimSpace(value)
	case "to":
		p.rec.To = strings.TrimSpace(value)
	case "subject":
		p.rec.Subject = strings.TrimSpace(value)
	case "cc":
		p.rec.Cc = appendItems(p.rec.Cc, value)
	case "bcc":
		p.rec.Bcc = appendItems(p.rec.Bcc, value)
	default:
		p.ignored = append(p.ignored, strings.TrimSpace(key))
	}
	return nil
}

// isBodyMarker reports whether a header line starts the body. Leading
// blanks are ignored, as they are for every other key.
func isBodyMarker(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimLeft(line, " \t")), "body")
}

// stripBodyKey removes the "Body:" prefix from the first body line. Colons
// after the first one are body text. A marker line whose key is not exactly
// "body" (e.g. "Bodyguard: x") is kept whole.
func stripBodyKey(line string) string {
	key, rest, ok := strings.Cut(line, ":")
	if !ok {
		if strings.EqualFold(strings.TrimSpace(line), "body") {
			return ""
		}
		return line
	}
	if !strings.EqualFold(strings.TrimSpace(key), "body") {
		return line
	}
	return strings.TrimLeft(rest, " \t")
}

func appendItems(list []string, value string) []string {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// InBody reports whether the body marker has been seen.
func (p *Parser) InBody() bool {
	return p.state == stateBody
}

// Ignored returns the unrecognized keys seen so far, in input order.
func (p *Parser) Ignored() []string {
	return p.ignored
}

// Record commits the accumulated body and returns the parsed record.
func (p *Parser) Record() *Record {
	rec := p.rec
	rec.Body = p.body.String()
	rec.Cc = append([]string(nil), p.rec.Cc...)
	rec.Bcc = append([]string(nil), p.rec.Bcc...)
	return &rec
}

// Parse reads an email description from r.
func Parse(r io.Reader) (*Record, error) {
	p := NewParser()
	if err := p.parse(r); err != nil {
		return nil, err
	}
	return p.Record(), nil
}

// parse feeds every line of r to the parser. Lines have no length limit.
func (p *Parser) parse(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w: %w", ErrFile, err)
		}
		if line != "" {
			if perr := p.ParseLine(strings.TrimSuffix(line, "\n")); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// ParseFile opens and parses the email file at path.
func ParseFile(path string) (*Record, error) {
	p, err := ParseFileWith(path)
	if err != nil {
		return nil, err
	}
	return p.Record(), nil
}

// ParseFileWith parses the file at path and returns the parser itself so
// callers can inspect Ignored keys.
func ParseFileWith(path string) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFile, err)
	}
	defer f.Close()

	p := NewParser()
	if err := p.parse(f); err != nil {
		return nil, err
	}
	return p, nil
}
