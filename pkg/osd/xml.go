package osd

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/protocol/primitives"
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// xmlDecl and the llsd root frame every XML serialization. XML-LLSD is the
// interoperability baseline format.
const xmlDecl = `<?xml version="1.0" encoding="UTF-8"?>`

// SerializeXML renders v as XML-LLSD under an <llsd> root.
func SerializeXML(v Value) []byte {
	var b bytes.Buffer
	b.WriteString(xmlDecl)
	b.WriteString("<llsd>")
	writeXML(&b, v)
	b.WriteString("</llsd>")
	return b.Bytes()
}

func writeXML(b *bytes.Buffer, v Value) {
	switch v.t {
	case TypeNull:
		b.WriteString("<undef/>")
	case TypeBool:
		if v.b {
			b.WriteString("<boolean>1</boolean>")
		} else {
			b.WriteString("<boolean>0</boolean>")
		}
	case TypeInt:
		b.WriteString("<integer>")
		b.WriteString(strconv.FormatInt(v.i, 10))
		b.WriteString("</integer>")
	case TypeReal:
		b.WriteString("<real>")
		b.WriteString(formatReal(v.r))
		b.WriteString("</real>")
	case TypeString:
		b.WriteString("<string>")
		xmlEscape(b, v.s)
		b.WriteString("</string>")
	case TypeUUID:
		b.WriteString("<uuid>")
		b.WriteString(v.u.String())
		b.WriteString("</uuid>")
	case TypeDate:
		b.WriteString("<date>")
		b.WriteString(primitives.FormatDate(v.tm))
		b.WriteString("</date>")
	case TypeURI:
		b.WriteString("<uri>")
		xmlEscape(b, v.s)
		b.WriteString("</uri>")
	case TypeBinary:
		b.WriteString(`<binary encoding="base64">`)
		b.WriteString(primitives.EncodeBase64(v.bin))
		b.WriteString("</binary>")
	case TypeArray:
		b.WriteString("<array>")
		for _, e := range v.a {
			writeXML(b, e)
		}
		b.WriteString("</array>")
	case TypeMap:
		b.WriteString("<map>")
		for k, e := range v.m {
			b.WriteString("<key>")
			xmlEscape(b, k)
			b.WriteString("</key>")
			writeXML(b, e)
		}
		b.WriteString("</map>")
	default:
		b.WriteString("<undef/>")
	}
}

func xmlEscape(b *bytes.Buffer, s string) {
	// EscapeText only fails when the writer fails; a Buffer never does.
	_ = xml.EscapeText(b, []byte(s))
}

// ParseXML decodes XML-LLSD. The root element is <llsd>; the legacy empty
// sentinel <Empty> decodes to Null.
func ParseXML(data []byte) (Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return Value{}, protoerr.Malformed("xml llsd: no root element")
		}
		if err != nil {
			return Value{}, protoerr.Malformed("xml llsd: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "llsd":
			v, err := xmlValue(dec)
			if err != nil {
				return Value{}, err
			}
			return v, nil
		case "Empty":
			return Null(), nil
		default:
			return Value{}, protoerr.Malformed("xml llsd: unexpected root <%s>", start.Name.Local)
		}
	}
}

// xmlValue decodes the next value element from the stream. It returns Null
// when the enclosing element closes with no further children.
func xmlValue(dec *xml.Decoder) (Value, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, protoerr.Malformed("xml llsd: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return xmlElement(dec, t)
		case xml.EndElement:
			return Null(), nil
		case xml.CharData:
			// Whitespace between elements.
		}
	}
}

func xmlElement(dec *xml.Decoder, start xml.StartElement) (Value, error) {
	switch start.Name.Local {
	case "undef":
		if err := dec.Skip(); err != nil {
			return Value{}, protoerr.Malformed("xml llsd: %v", err)
		}
		return Null(), nil
	case "boolean":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		s = strings.TrimSpace(strings.ToLower(s))
		return FromBool(s == "1" || s == "true"), nil
	case "integer":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		i, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return FromLong(i), nil
	case "real":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return FromReal(f), nil
	case "string":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		return FromString(s), nil
	case "uuid":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		u, _ := uuid.Parse(strings.TrimSpace(s))
		return FromUUID(u), nil
	case "date":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		return FromDate(primitives.ParseDate(strings.TrimSpace(s))), nil
	case "uri":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		return FromURI(s), nil
	case "binary":
		s, err := xmlText(dec)
		if err != nil {
			return Value{}, err
		}
		return FromBinary(primitives.DecodeBase64(strings.TrimSpace(s))), nil
	case "array":
		var arr []Value
		for {
			tok, err := dec.Token()
			if err != nil {
				return Value{}, protoerr.Malformed("xml llsd: %v", err)
			}
			switch t := tok.(type) {
			case xml.StartElement:
				e, err := xmlElement(dec, t)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, e)
			case xml.EndElement:
				if arr == nil {
					arr = []Value{}
				}
				return FromArray(arr), nil
			}
		}
	case "map":
		m := make(map[string]Value)
		for {
			tok, err := dec.Token()
			if err != nil {
				return Value{}, protoerr.Malformed("xml llsd: %v", err)
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local != "key" {
					return Value{}, protoerr.Malformed("xml llsd: expected <key>, found <%s>", t.Name.Local)
				}
				k, err := xmlText(dec)
				if err != nil {
					return Value{}, err
				}
				e, err := xmlValue(dec)
				if err != nil {
					return Value{}, err
				}
				m[k] = e
			case xml.EndElement:
				return FromMap(m), nil
			}
		}
	default:
		return Value{}, protoerr.Malformed("xml llsd: unknown element <%s>", start.Name.Local)
	}
}

// xmlText collects the character data of the current element up to its end
// tag.
func xmlText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", protoerr.Malformed("xml llsd: %v", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", protoerr.Malformed("xml llsd: unexpected <%s> in text element", t.Name.Local)
		}
	}
}
