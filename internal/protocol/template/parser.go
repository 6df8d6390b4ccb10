package template

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a message template manifest. The syntax is the Linden
// brace-and-tab dialect:
//
//	version 2.0
//	{
//		TestMessage Low 1 NotTrusted Zerocoded
//		{
//			TestBlock1    Single
//			{    Test1    U32    }
//		}
//		{
//			NeighborBlock Multiple 4
//			{    Test0    U32    }
//		}
//	}
//
// Comments start with "//". Directives other than "version" are ignored so
// newer manifests parse without changes here. Messages named in unused are
// dropped from the model; their ids stay reserved for uniqueness checking
// during Validate.
func Parse(r io.Reader, unused map[string]struct{}) (*Template, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	t := &Template{byName: make(map[string]*Message)}
	p := &parser{toks: toks}

	for !p.done() {
		tok := p.peek()
		switch {
		case tok == "{":
			msg, err := p.message()
			if err != nil {
				return nil, err
			}
			if _, skip := unused[msg.Name]; skip {
				// Keep the descriptor out of the model but remember its id
				// slot so Validate still sees collisions.
				t.Messages = append(t.Messages, &Message{
					Name: msg.Name, Freq: msg.Freq, ID: msg.ID,
				})
				continue
			}
			t.Messages = append(t.Messages, msg)
			t.byName[msg.Name] = msg
		case tok == "version":
			p.next()
			if p.done() {
				return nil, fmt.Errorf("template: version directive without value")
			}
			t.Version = p.next()
		default:
			// Unknown directive: consume the directive word and its value.
			p.next()
			if !p.done() && p.peek() != "{" {
				p.next()
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	// Drop the reserved-only placeholders now that ids are checked.
	kept := t.Messages[:0]
	for _, m := range t.Messages {
		if t.byName[m.Name] == m {
			kept = append(kept, m)
		}
	}
	t.Messages = kept
	return t, nil
}

// ParseString is Parse over an in-memory manifest.
func ParseString(s string, unused map[string]struct{}) (*Template, error) {
	return Parse(strings.NewReader(s), unused)
}

func tokenize(r io.Reader) ([]string, error) {
	var toks []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, f := range strings.Fields(line) {
			// Braces may abut words in hand-edited manifests.
			for len(f) > 0 {
				switch {
				case f[0] == '{' || f[0] == '}':
					toks = append(toks, string(f[0]))
					f = f[1:]
				default:
					end := len(f)
					if i := strings.IndexAny(f, "{}"); i >= 0 {
						end = i
					}
					toks = append(toks, f[:end])
					f = f[end:]
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("template: read: %w", err)
	}
	return toks, nil
}

type parser struct {
	toks []string
	i    int
}

func (p *parser) done() bool   { return p.i >= len(p.toks) }
func (p *parser) peek() string { return p.toks[p.i] }
func (p *parser) next() string { t := p.toks[p.i]; p.i++; return t }

func (p *parser) expect(s string) error {
	if p.done() || p.toks[p.i] != s {
		return fmt.Errorf("template: expected %q at token %d", s, p.i)
	}
	p.i++
	return nil
}

func (p *parser) message() (*Message, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	m := &Message{}
	m.Name = p.next()

	freq := p.next()
	switch freq {
	case "High":
		m.Freq = High
	case "Medium":
		m.Freq = Medium
	case "Low":
		m.Freq = Low
	case "Fixed":
		m.Freq = Fixed
	default:
		return nil, fmt.Errorf("template: %s: unknown frequency %q", m.Name, freq)
	}

	idTok := p.next()
	id, err := parseMessageID(idTok, m.Freq)
	if err != nil {
		return nil, fmt.Errorf("template: %s: %w", m.Name, err)
	}
	m.ID = id

	trust := p.next()
	switch trust {
	case "Trusted":
		m.Trusted = true
	case "NotTrusted":
	default:
		return nil, fmt.Errorf("template: %s: unknown trust %q", m.Name, trust)
	}

	enc := p.next()
	switch enc {
	case "Zerocoded":
		m.Zerocoded = true
	case "Unencoded":
	default:
		return nil, fmt.Errorf("template: %s: unknown encoding %q", m.Name, enc)
	}

	// Trailing per-message flags (e.g. UDPDeprecated) are ignored.
	for !p.done() && p.peek() != "{" && p.peek() != "}" {
		p.next()
	}

	for !p.done() && p.peek() == "{" {
		b, err := p.block(m.Name)
		if err != nil {
			return nil, err
		}
		m.Blocks = append(m.Blocks, b)
	}

	return m, p.expect("}")
}

func (p *parser) block(msgName string) (Block, error) {
	var b Block
	if err := p.expect("{"); err != nil {
		return b, err
	}
	b.Name = p.next()

	qty := p.next()
	switch qty {
	case "Single":
		b.Qty = Single
	case "Multiple":
		b.Qty = Multiple
		n, err := strconv.Atoi(p.next())
		if err != nil {
			return b, fmt.Errorf("template: %s.%s: multiple count: %w", msgName, b.Name, err)
		}
		b.Count = n
	case "Variable":
		b.Qty = Variable
	default:
		return b, fmt.Errorf("template: %s.%s: unknown multiplicity %q", msgName, b.Name, qty)
	}

	for !p.done() && p.peek() == "{" {
		f, err := p.field(msgName, b.Name)
		if err != nil {
			return b, err
		}
		b.Fields = append(b.Fields, f)
	}

	return b, p.expect("}")
}

func (p *parser) field(msgName, blockName string) (Field, error) {
	var f Field
	if err := p.expect("{"); err != nil {
		return f, err
	}
	f.Name = p.next()

	typ := p.next()
	ft, ok := fieldTypeByName(typ)
	if !ok {
		return f, fmt.Errorf("template: %s.%s.%s: unknown type %q", msgName, blockName, f.Name, typ)
	}
	f.Type = ft

	if ft == TypeFixed || ft == TypeVariable {
		n, err := strconv.Atoi(p.next())
		if err != nil {
			return f, fmt.Errorf("template: %s.%s.%s: count: %w", msgName, blockName, f.Name, err)
		}
		f.Count = n
	}

	return f, p.expect("}")
}

func fieldTypeByName(s string) (FieldType, bool) {
	for t, n := range fieldTypeNames {
		if n == s {
			return t, true
		}
	}
	return 0, false
}

// parseMessageID accepts decimal ids and the 0xFFFFFFxx hex form used by
// Fixed (and some Low) entries. Hex Fixed ids reduce to the low byte, other
// hex ids to the low 16 bits.
func parseMessageID(tok string, f Frequency) (uint16, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		v, err := strconv.ParseUint(tok[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("message id %q: %w", tok, err)
		}
		// Fixed entries spell the full 0xFFFFFFxx word; only the low byte
		// reaches the wire.
		if f == Fixed {
			return uint16(v & 0xFF), nil
		}
		return uint16(v & 0xFFFF), nil
	}
	v, err := strconv.ParseUint(tok, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("message id %q: %w", tok, err)
	}
	return uint16(v), nil
}
