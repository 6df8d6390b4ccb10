package osd

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/protocol/primitives"
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// notationHeader prefixes notation serializations so the format sniffer
// can route them.
const notationHeader = "<? llsd/notation ?>\n"

// SerializeNotation renders v in the sigil-based notation format,
// prefixed with the notation header line.
func SerializeNotation(v Value) []byte {
	var b strings.Builder
	b.WriteString(notationHeader)
	writeNotation(&b, v)
	return []byte(b.String())
}

func writeNotation(b *strings.Builder, v Value) {
	switch v.t {
	case TypeNull:
		b.WriteByte('!')
	case TypeBool:
		if v.b {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	case TypeInt:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(v.i, 10))
	case TypeReal:
		b.WriteByte('r')
		b.WriteString(formatReal(v.r))
	case TypeString:
		writeNotationString(b, v.s)
	case TypeUUID:
		b.WriteByte('u')
		b.WriteString(v.u.String())
	case TypeDate:
		b.WriteString("d\"")
		b.WriteString(primitives.FormatDate(v.tm))
		b.WriteByte('"')
	case TypeURI:
		b.WriteString("l\"")
		b.WriteString(escapeNotation(v.s, '"'))
		b.WriteByte('"')
	case TypeBinary:
		b.WriteString("b64\"")
		b.WriteString(primitives.EncodeBase64(v.bin))
		b.WriteByte('"')
	case TypeArray:
		b.WriteByte('[')
		for i, e := range v.a {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNotation(b, e)
		}
		b.WriteByte(']')
	case TypeMap:
		b.WriteByte('{')
		first := true
		for k, e := range v.m {
			if !first {
				b.WriteByte(',')
			}
			first = false
			writeNotationString(b, k)
			b.WriteByte(':')
			writeNotation(b, e)
		}
		b.WriteByte('}')
	default:
		b.WriteByte('!')
	}
}

func writeNotationString(b *strings.Builder, s string) {
	b.WriteByte('\'')
	b.WriteString(escapeNotation(s, '\''))
	b.WriteByte('\'')
}

func escapeNotation(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == quote || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ParseNotation decodes the notation format, tolerating an optional header
// line and surrounding whitespace.
func ParseNotation(data []byte) (Value, error) {
	d := &notationDecoder{data: skipBinaryHeader(data)}
	d.skipSpace()
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

type notationDecoder struct {
	data []byte
	pos  int
}

func (d *notationDecoder) skipSpace() {
	for d.pos < len(d.data) {
		switch d.data[d.pos] {
		case ' ', '\t', '\r', '\n':
			d.pos++
		default:
			return
		}
	}
}

func (d *notationDecoder) peek() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, protoerr.Malformed("notation llsd: truncated at %d", d.pos)
	}
	return d.data[d.pos], nil
}

func (d *notationDecoder) expect(c byte) error {
	b, err := d.peek()
	if err != nil {
		return err
	}
	if b != c {
		return protoerr.Malformed("notation llsd: expected %q at %d, found %q", string(c), d.pos, string(b))
	}
	d.pos++
	return nil
}

// quoted reads a single- or double-quoted string with backslash escapes.
func (d *notationDecoder) quoted() (string, error) {
	quote, err := d.peek()
	if err != nil {
		return "", err
	}
	if quote != '\'' && quote != '"' {
		return "", protoerr.Malformed("notation llsd: expected quote at %d", d.pos)
	}
	d.pos++
	var b strings.Builder
	for d.pos < len(d.data) {
		c := d.data[d.pos]
		d.pos++
		switch c {
		case quote:
			return b.String(), nil
		case '\\':
			if d.pos >= len(d.data) {
				return "", protoerr.Malformed("notation llsd: dangling escape")
			}
			b.WriteByte(d.data[d.pos])
			d.pos++
		default:
			b.WriteByte(c)
		}
	}
	return "", protoerr.Malformed("notation llsd: unterminated string")
}

// number reads the longest numeric run (digits, sign, dot, exponent).
func (d *notationDecoder) number() (string, error) {
	start := d.pos
	for d.pos < len(d.data) {
		c := d.data[d.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			d.pos++
			continue
		}
		break
	}
	if d.pos == start {
		return "", protoerr.Malformed("notation llsd: expected number at %d", start)
	}
	return string(d.data[start:d.pos]), nil
}

func (d *notationDecoder) value() (Value, error) {
	d.skipSpace()
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch c {
	case '!':
		d.pos++
		return Null(), nil
	case '1', 'T', 't':
		d.consumeWord()
		return FromBool(true), nil
	case '0', 'F', 'f':
		d.consumeWord()
		return FromBool(false), nil
	case 'i':
		d.pos++
		n, err := d.number()
		if err != nil {
			return Value{}, err
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return Value{}, protoerr.Malformed("notation llsd: integer %q", n)
		}
		return FromLong(i), nil
	case 'r':
		d.pos++
		// Reals also appear as the words nan, inf, and -inf.
		if word := d.peekWord(); word == "nan" || word == "inf" || word == "-inf" {
			d.pos += len(word)
			f, _ := strconv.ParseFloat(word, 64)
			if word == "nan" {
				return FromReal(math.NaN()), nil
			}
			return FromReal(f), nil
		}
		n, err := d.number()
		if err != nil {
			return Value{}, err
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return Value{}, protoerr.Malformed("notation llsd: real %q", n)
		}
		return FromReal(f), nil
	case '\'', '"':
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return FromString(s), nil
	case 's':
		// s(len)"raw" sized form.
		d.pos++
		n, err := d.sizedLength()
		if err != nil {
			return Value{}, err
		}
		s, err := d.rawQuoted(n)
		if err != nil {
			return Value{}, err
		}
		return FromString(s), nil
	case 'u':
		d.pos++
		if len(d.data)-d.pos < 36 {
			return Value{}, protoerr.Malformed("notation llsd: truncated uuid")
		}
		u, err := uuid.Parse(string(d.data[d.pos : d.pos+36]))
		if err != nil {
			return Value{}, protoerr.Malformed("notation llsd: uuid: %v", err)
		}
		d.pos += 36
		return FromUUID(u), nil
	case 'd':
		d.pos++
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return FromDate(primitives.ParseDate(s)), nil
	case 'l':
		d.pos++
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return FromURI(s), nil
	case 'b':
		return d.binary()
	case '[':
		d.pos++
		var arr []Value
		d.skipSpace()
		if next, err := d.peek(); err != nil {
			return Value{}, err
		} else if next == ']' {
			d.pos++
			return FromArray([]Value{}), nil
		}
		for {
			e, err := d.value()
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, e)
			d.skipSpace()
			next, err := d.peek()
			if err != nil {
				return Value{}, err
			}
			if next == ',' {
				d.pos++
				continue
			}
			if next == ']' {
				d.pos++
				return FromArray(arr), nil
			}
			return Value{}, protoerr.Malformed("notation llsd: expected , or ] at %d", d.pos)
		}
	case '{':
		d.pos++
		m := make(map[string]Value)
		d.skipSpace()
		if next, err := d.peek(); err != nil {
			return Value{}, err
		} else if next == '}' {
			d.pos++
			return FromMap(m), nil
		}
		for {
			d.skipSpace()
			k, err := d.quoted()
			if err != nil {
				return Value{}, err
			}
			d.skipSpace()
			if err := d.expect(':'); err != nil {
				return Value{}, err
			}
			e, err := d.value()
			if err != nil {
				return Value{}, err
			}
			m[k] = e
			d.skipSpace()
			next, err := d.peek()
			if err != nil {
				return Value{}, err
			}
			if next == ',' {
				d.pos++
				continue
			}
			if next == '}' {
				d.pos++
				return FromMap(m), nil
			}
			return Value{}, protoerr.Malformed("notation llsd: expected , or } at %d", d.pos)
		}
	default:
		return Value{}, protoerr.Malformed("notation llsd: unexpected %q at %d", string(c), d.pos)
	}
}

// binary handles b64"...", b16"...", and b(len)"raw".
func (d *notationDecoder) binary() (Value, error) {
	d.pos++ // consume 'b'
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case c == '(':
		n, err := d.sizedLength()
		if err != nil {
			return Value{}, err
		}
		s, err := d.rawQuoted(n)
		if err != nil {
			return Value{}, err
		}
		return FromBinary([]byte(s)), nil
	case c == '6': // b64"..."
		if len(d.data)-d.pos < 2 || d.data[d.pos+1] != '4' {
			return Value{}, protoerr.Malformed("notation llsd: bad binary base at %d", d.pos)
		}
		d.pos += 2
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return FromBinary(primitives.DecodeBase64(s)), nil
	case c == '1': // b16"..."
		if len(d.data)-d.pos < 2 || d.data[d.pos+1] != '6' {
			return Value{}, protoerr.Malformed("notation llsd: bad binary base at %d", d.pos)
		}
		d.pos += 2
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return FromBinary(decodeHex(s)), nil
	default:
		return Value{}, protoerr.Malformed("notation llsd: bad binary form at %d", d.pos)
	}
}

// sizedLength reads a "(123)" parenthesized byte count.
func (d *notationDecoder) sizedLength() (int, error) {
	if err := d.expect('('); err != nil {
		return 0, err
	}
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	n, err := strconv.Atoi(string(d.data[start:d.pos]))
	if err != nil {
		return 0, protoerr.Malformed("notation llsd: sized length at %d", start)
	}
	if err := d.expect(')'); err != nil {
		return 0, err
	}
	return n, nil
}

// rawQuoted reads exactly n bytes between quotes with no escape handling.
func (d *notationDecoder) rawQuoted(n int) (string, error) {
	if err := d.expect('"'); err != nil {
		return "", err
	}
	if len(d.data)-d.pos < n {
		return "", protoerr.Malformed("notation llsd: sized run overruns input")
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	if err := d.expect('"'); err != nil {
		return "", err
	}
	return s, nil
}

// consumeWord advances past a boolean literal in any of its spellings
// (1, t, true, T, TRUE, 0, f, false, F, FALSE).
func (d *notationDecoder) consumeWord() {
	w := d.peekWord()
	switch strings.ToLower(w) {
	case "true", "false":
		d.pos += len(w)
	default:
		d.pos++
	}
}

func (d *notationDecoder) peekWord() string {
	end := d.pos
	for end < len(d.data) {
		c := d.data[end]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (end == d.pos && c == '-') {
			end++
			continue
		}
		break
	}
	return string(d.data[d.pos:end])
}

func decodeHex(s string) []byte {
	out := make([]byte, 0, len(s)/2)
	var cur byte
	have := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		var nib byte
		switch {
		case c >= '0' && c <= '9':
			nib = c - '0'
		case c >= 'a' && c <= 'f':
			nib = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			nib = c - 'A' + 10
		default:
			continue
		}
		if !have {
			cur = nib << 4
			have = true
		} else {
			out = append(out, cur|nib)
			have = false
		}
	}
	return out
}
