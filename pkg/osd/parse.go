package osd

import (
	"bytes"
)

// Format identifies one of the four serializations.
type Format int

const (
	FormatJSON Format = iota
	FormatXML
	FormatNotation
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	case FormatNotation:
		return "notation"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Sniff selects the serialization by the leading bytes, case-insensitively:
// "<llsd" or "<?xml" means XML-LLSD, "<? llsd/notation" notation,
// "<? llsd/binary" binary, and anything else JSON.
func Sniff(data []byte) Format {
	head := data
	for len(head) > 0 {
		switch head[0] {
		case ' ', '\t', '\r', '\n':
			head = head[1:]
			continue
		}
		break
	}
	if len(head) > 32 {
		head = head[:32]
	}
	lower := bytes.ToLower(head)
	switch {
	case bytes.HasPrefix(lower, []byte("<? llsd/notation")):
		return FormatNotation
	case bytes.HasPrefix(lower, []byte("<? llsd/binary")):
		return FormatBinary
	case bytes.HasPrefix(lower, []byte("<llsd")), bytes.HasPrefix(lower, []byte("<?xml")):
		return FormatXML
	default:
		return FormatJSON
	}
}

// Parse deserializes data in whichever format Sniff detects.
func Parse(data []byte) (Value, error) {
	switch Sniff(data) {
	case FormatNotation:
		return ParseNotation(data)
	case FormatBinary:
		return ParseBinary(data)
	case FormatXML:
		return ParseXML(data)
	default:
		return ParseJSON(data)
	}
}

// Serialize renders v in the given format.
func Serialize(v Value, f Format) ([]byte, error) {
	switch f {
	case FormatNotation:
		return SerializeNotation(v), nil
	case FormatBinary:
		return SerializeBinary(v), nil
	case FormatXML:
		return SerializeXML(v), nil
	default:
		return SerializeJSON(v)
	}
}
