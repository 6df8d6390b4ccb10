// Package template holds the in-memory message dictionary parsed from a
// Linden-style message template manifest: every protocol message with its
// frequency class, id, trust level, encoding hint, and block/field layout.
//
// The model is the single source the code generator consumes; the runtime
// never parses the manifest on the hot path.
package template

import (
	"fmt"
)

// Frequency is the message frequency class. It determines the width of the
// message id on the wire: High ids are one byte, Medium two (leading 0xFF),
// Low four (leading 0xFF 0xFF), Fixed four (leading 0xFF 0xFF 0xFF).
type Frequency int

const (
	High Frequency = iota
	Medium
	Low
	Fixed
)

func (f Frequency) String() string {
	switch f {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	case Fixed:
		return "Fixed"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// IDWidth returns the number of message-id bytes on the wire for this class.
func (f Frequency) IDWidth() int {
	switch f {
	case High:
		return 1
	case Medium:
		return 2
	default:
		return 4
	}
}

// FieldType enumerates the wire types a field can carry.
type FieldType int

const (
	TypeBool FieldType = iota
	TypeU8
	TypeS8
	TypeU16
	TypeS16
	TypeU32
	TypeS32
	TypeU64
	TypeS64
	TypeF32
	TypeF64
	TypeIPAddr
	TypeIPPort
	TypeUUID
	TypeVector3
	TypeVector3d
	TypeVector4
	TypeQuaternion
	TypeFixed
	TypeVariable
)

var fieldTypeNames = map[FieldType]string{
	TypeBool:       "BOOL",
	TypeU8:         "U8",
	TypeS8:         "S8",
	TypeU16:        "U16",
	TypeS16:        "S16",
	TypeU32:        "U32",
	TypeS32:        "S32",
	TypeU64:        "U64",
	TypeS64:        "S64",
	TypeF32:        "F32",
	TypeF64:        "F64",
	TypeIPAddr:     "IPADDR",
	TypeIPPort:     "IPPORT",
	TypeUUID:       "LLUUID",
	TypeVector3:    "LLVector3",
	TypeVector3d:   "LLVector3d",
	TypeVector4:    "LLVector4",
	TypeQuaternion: "LLQuaternion",
	TypeFixed:      "Fixed",
	TypeVariable:   "Variable",
}

func (t FieldType) String() string {
	if n, ok := fieldTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// WireSize returns the fixed byte cost of the type, or -1 for Fixed and
// Variable fields whose cost depends on the declared count or runtime
// payload.
func (t FieldType) WireSize() int {
	switch t {
	case TypeBool, TypeU8, TypeS8:
		return 1
	case TypeU16, TypeS16, TypeIPPort:
		return 2
	case TypeU32, TypeS32, TypeF32, TypeIPAddr:
		return 4
	case TypeU64, TypeS64, TypeF64:
		return 8
	case TypeVector3, TypeQuaternion:
		return 12
	case TypeVector4:
		return 16
	case TypeVector3d:
		return 24
	case TypeUUID:
		return 16
	default:
		return -1
	}
}

// Quantity is the block multiplicity.
type Quantity int

const (
	// Single blocks appear exactly once.
	Single Quantity = iota
	// Multiple blocks appear a fixed number of times declared in the
	// template.
	Multiple
	// Variable blocks carry a one-byte runtime repeat count (0..255).
	Variable
)

func (q Quantity) String() string {
	switch q {
	case Single:
		return "Single"
	case Multiple:
		return "Multiple"
	case Variable:
		return "Variable"
	default:
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
}

// Field is one wire field within a block. Count holds the exact byte length
// for Fixed fields and the length-prefix width (1 or 2) for Variable fields;
// it is zero otherwise. The Variable count encodes the prefix width by
// convention, not a maximum.
type Field struct {
	Name  string
	Type  FieldType
	Count int
}

// FixedSize returns the wire cost of the field excluding any runtime
// variable payload: the scalar size, the declared Fixed length, or the
// Variable length-prefix width.
func (f Field) FixedSize() int {
	switch f.Type {
	case TypeFixed:
		return f.Count
	case TypeVariable:
		return f.Count
	default:
		return f.Type.WireSize()
	}
}

// Block is an ordered group of fields with a multiplicity. Count is the
// fixed repeat count for Multiple blocks and zero otherwise.
type Block struct {
	Name   string
	Qty    Quantity
	Count  int
	Fields []Field
}

// Message is one protocol message descriptor.
type Message struct {
	Name      string
	Freq      Frequency
	ID        uint16
	Trusted   bool
	Zerocoded bool
	Blocks    []Block
}

// Template is the parsed message dictionary.
type Template struct {
	Version  string
	Messages []*Message

	byName map[string]*Message
}

// Lookup returns the message descriptor with the given name, or nil.
func (t *Template) Lookup(name string) *Message {
	return t.byName[name]
}

// Validate checks the post-parse invariants: unique names across all
// frequencies, unique ids within each frequency, legal multiplicities, and
// legal Fixed/Variable field counts.
func (t *Template) Validate() error {
	names := make(map[string]struct{}, len(t.Messages))
	ids := make(map[Frequency]map[uint16]string)

	for _, m := range t.Messages {
		if _, dup := names[m.Name]; dup {
			return fmt.Errorf("duplicate message name %q", m.Name)
		}
		names[m.Name] = struct{}{}

		if ids[m.Freq] == nil {
			ids[m.Freq] = make(map[uint16]string)
		}
		if prev, dup := ids[m.Freq][m.ID]; dup {
			return fmt.Errorf("%s id %d claimed by both %q and %q", m.Freq, m.ID, prev, m.Name)
		}
		ids[m.Freq][m.ID] = m.Name

		for _, b := range m.Blocks {
			switch b.Qty {
			case Single:
			case Multiple:
				if b.Count < 2 {
					return fmt.Errorf("%s.%s: multiple block count %d", m.Name, b.Name, b.Count)
				}
			case Variable:
			default:
				return fmt.Errorf("%s.%s: unknown multiplicity", m.Name, b.Name)
			}
			for _, f := range b.Fields {
				switch f.Type {
				case TypeFixed:
					if f.Count < 1 {
						return fmt.Errorf("%s.%s.%s: fixed field count %d", m.Name, b.Name, f.Name, f.Count)
					}
				case TypeVariable:
					if f.Count != 1 && f.Count != 2 {
						return fmt.Errorf("%s.%s.%s: variable field prefix %d", m.Name, b.Name, f.Name, f.Count)
					}
				}
			}
		}
	}
	return nil
}
