// Package codegen turns the parsed message dictionary into the Go source of
// the packets package: one struct per message and block, encode/decode and
// length routines, MTU splitting for variable-multiplicity blocks, the
// PacketType constants, and the factory tables.
//
// The emitter writes plain source through a builder and runs the result
// through go/format, so the checked-in output is always gofmt-clean.
package codegen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/gridlink/gridlink/internal/protocol/template"
)

// Generate renders the packets source for the given dictionary. source
// names the manifest in the generated-file header.
func Generate(t *template.Template, pkg, source string) ([]byte, error) {
	g := &generator{tmpl: t, pkg: pkg, source: source}
	raw := g.file()
	out, err := format.Source([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("codegen: format: %w", err)
	}
	return out, nil
}

type generator struct {
	tmpl   *template.Template
	pkg    string
	source string
	b      strings.Builder
}

func (g *generator) pf(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
}

func (g *generator) file() string {
	g.pf("// Code generated by msggen from %s. DO NOT EDIT.\n\n", g.source)
	g.pf("package %s\n\n", g.pkg)
	g.pf("import (\n")
	g.pf("\t%q\n\n", "github.com/google/uuid")
	for _, path := range []string{
		"github.com/gridlink/gridlink/internal/protocol/primitives",
		"github.com/gridlink/gridlink/internal/protocol/template",
		"github.com/gridlink/gridlink/internal/protocol/types",
		"github.com/gridlink/gridlink/internal/protocol/wire",
	} {
		g.pf("\t%q\n", path)
	}
	g.pf(")\n\n")

	g.typeConsts()
	g.tables()
	for _, m := range g.tmpl.Messages {
		g.message(m)
	}
	return g.b.String()
}

func (g *generator) typeConsts() {
	g.pf("// Packet type tags. The frequency class occupies the upper byte.\n")
	g.pf("const (\n")
	for _, m := range g.tmpl.Messages {
		g.pf("\tType%s PacketType = PacketType(template.%s)<<24 | %d\n", m.Name, m.Freq, m.ID)
	}
	g.pf(")\n\n")
}

func (g *generator) tables() {
	g.pf("var typeNames = map[PacketType]string{\n")
	for _, m := range g.tmpl.Messages {
		g.pf("\tType%s: %q,\n", m.Name, m.Name)
	}
	g.pf("}\n\n")

	g.pf("var typesByName = func() map[string]PacketType {\n")
	g.pf("\tm := make(map[string]PacketType, len(typeNames))\n")
	g.pf("\tfor t, n := range typeNames {\n\t\tm[n] = t\n\t}\n")
	g.pf("\treturn m\n}()\n\n")

	g.pf("var factory = map[PacketType]func() Packet{\n")
	for _, m := range g.tmpl.Messages {
		g.pf("\tType%s: func() Packet { return New%s() },\n", m.Name, m.Name)
	}
	g.pf("}\n\n")
}

func (g *generator) message(m *template.Message) {
	for _, b := range m.Blocks {
		g.blockStruct(m, b)
	}

	enc := "unencoded"
	if m.Zerocoded {
		enc = "zerocoded"
	}
	g.pf("// %s is %s %d (%s).\n", m.Name, m.Freq, m.ID, enc)
	g.pf("type %s struct {\n", m.Name)
	g.pf("\tHead wire.Header\n")
	for _, b := range m.Blocks {
		switch b.Qty {
		case template.Single:
			g.pf("\t%s %s%s\n", b.Name, m.Name, b.Name)
		case template.Multiple:
			g.pf("\t%s [%d]%s%s\n", b.Name, b.Count, m.Name, b.Name)
		case template.Variable:
			g.pf("\t%s []%s%s\n", b.Name, m.Name, b.Name)
		}
	}
	g.pf("}\n\n")

	g.constructor(m)
	g.pf("func (p *%s) Type() PacketType     { return Type%s }\n", m.Name, m.Name)
	g.pf("func (p *%s) Header() *wire.Header { return &p.Head }\n\n", m.Name)
	g.length(m)
	g.toBytes(m)
	g.toBytesMultiple(m)
	g.decode(m)
}

func (g *generator) blockStruct(m *template.Message, b template.Block) {
	article, suffix := "the", "block"
	if b.Qty != template.Single {
		article, suffix = "one", "block element"
	}
	g.pf("// %s%s is %s %s %s of %s.\n", m.Name, b.Name, article, b.Name, suffix, m.Name)
	g.pf("type %s%s struct {\n", m.Name, b.Name)
	for _, f := range b.Fields {
		g.pf("\t%s %s\n", f.Name, goType(f))
	}
	g.pf("}\n\n")
}

func (g *generator) constructor(m *template.Message) {
	if m.Zerocoded {
		g.pf("// New%s returns an empty %s with the zerocoded hint set.\n", m.Name, m.Name)
		g.pf("func New%s() *%s {\n\tp := &%s{}\n\tp.Head.Zerocoded = true\n\treturn p\n}\n\n", m.Name, m.Name, m.Name)
		return
	}
	g.pf("// New%s returns an empty %s.\n", m.Name, m.Name)
	g.pf("func New%s() *%s {\n\treturn &%s{}\n}\n\n", m.Name, m.Name, m.Name)
}

// fixedBlockCost returns the per-element byte cost of a block excluding
// runtime variable payloads, together with the variable fields that add to
// it at runtime.
func fixedBlockCost(b template.Block) (int, []template.Field) {
	cost := 0
	var varFields []template.Field
	for _, f := range b.Fields {
		cost += f.FixedSize()
		if f.Type == template.TypeVariable {
			varFields = append(varFields, f)
		}
	}
	return cost, varFields
}

// lengthTerms describes Length() for a message: a constant byte count, the
// linear len() terms, and the blocks that need a per-element loop because
// their elements carry variable fields.
func lengthTerms(m *template.Message) (fixed int, linear []string, loops []template.Block) {
	fixed = m.Freq.IDWidth()
	for _, b := range m.Blocks {
		cost, varFields := fixedBlockCost(b)
		switch b.Qty {
		case template.Single:
			fixed += cost
			for _, f := range varFields {
				linear = append(linear, fmt.Sprintf("len(p.%s.%s)", b.Name, f.Name))
			}
		case template.Multiple:
			if len(varFields) > 0 {
				// The loop term below carries the per-element fixed cost.
				loops = append(loops, b)
			} else {
				fixed += cost * b.Count
			}
		case template.Variable:
			fixed++ // repeat count byte
			if len(varFields) == 0 {
				linear = append(linear, fmt.Sprintf("%d*len(p.%s)", cost, b.Name))
			} else {
				loops = append(loops, b)
			}
		}
	}
	return fixed, linear, loops
}

// elemExpr returns the per-element byte cost of a block at index idx.
func elemExpr(b template.Block, idx string) string {
	cost, varFields := fixedBlockCost(b)
	expr := fmt.Sprintf("%d", cost)
	for _, f := range varFields {
		expr += fmt.Sprintf(" + len(p.%s[%s].%s)", b.Name, idx, f.Name)
	}
	return expr
}

func (g *generator) length(m *template.Message) {
	fixed, linear, loops := lengthTerms(m)

	expr := fmt.Sprintf("p.Head.Len() + %d", fixed)
	for _, d := range linear {
		expr += " + " + d
	}

	g.pf("func (p *%s) Length() int {\n", m.Name)
	if len(loops) == 0 {
		g.pf("\treturn %s\n}\n\n", expr)
		return
	}
	g.pf("\tn := %s\n", expr)
	for _, b := range loops {
		g.pf("\tfor i := range p.%s {\n", b.Name)
		g.pf("\t\tn += %s\n", elemExpr(b, "i"))
		g.pf("\t}\n")
	}
	g.pf("\treturn n\n}\n\n")
}

func (g *generator) toBytes(m *template.Message) {
	g.pf("func (p *%s) ToBytes() ([]byte, error) {\n", m.Name)
	if len(m.Blocks) == 0 {
		g.pf("\treturn appendFrame(p), nil\n}\n\n")
		return
	}
	g.pf("\tw := primitives.Wrap(appendFrame(p))\n")
	for _, b := range m.Blocks {
		switch b.Qty {
		case template.Single:
			for _, f := range b.Fields {
				g.writeField(fmt.Sprintf("p.%s.%s", b.Name, f.Name), f, 1)
			}
		case template.Multiple, template.Variable:
			if b.Qty == template.Variable {
				g.pf("\tw.U8(byte(len(p.%s)))\n", b.Name)
			}
			g.pf("\tfor i := range p.%s {\n", b.Name)
			for _, f := range b.Fields {
				g.writeField(fmt.Sprintf("p.%s[i].%s", b.Name, f.Name), f, 2)
			}
			g.pf("\t}\n")
		}
	}
	g.pf("\treturn w.Bytes(), nil\n}\n\n")
}

func (g *generator) writeField(expr string, f template.Field, depth int) {
	ind := strings.Repeat("\t", depth)
	switch f.Type {
	case template.TypeFixed:
		g.pf("%sif err := w.Fixed(%s, %d); err != nil {\n%s\treturn nil, err\n%s}\n", ind, expr, f.Count, ind, ind)
	case template.TypeVariable:
		g.pf("%sif err := w.Variable(%s, %d); err != nil {\n%s\treturn nil, err\n%s}\n", ind, expr, f.Count, ind, ind)
	default:
		g.pf("%sw.%s(%s)\n", ind, writerMethod(f.Type), expr)
	}
}

func (g *generator) toBytesMultiple(m *template.Message) {
	var varBlocks []template.Block
	for _, b := range m.Blocks {
		if b.Qty == template.Variable {
			varBlocks = append(varBlocks, b)
		}
	}
	if len(varBlocks) == 0 {
		g.pf("func (p *%s) ToBytesMultiple() ([][]byte, error) { return singleDatagram(p) }\n\n", m.Name)
		return
	}

	g.pf("func (p *%s) ToBytesMultiple() ([][]byte, error) {\n", m.Name)
	g.pf("\tbudget := MTU - splitAckHeadroom\n")
	g.pf("\tif p.Length() <= budget {\n\t\treturn singleDatagram(p)\n\t}\n")
	g.pf("\tvar out [][]byte\n")

	cursors := make(map[string]string, len(varBlocks))
	var decls, conds []string
	for i, b := range varBlocks {
		c := fmt.Sprintf("i%d", i)
		cursors[b.Name] = c
		decls = append(decls, c)
		conds = append(conds, fmt.Sprintf("%s < len(p.%s)", c, b.Name))
	}
	g.pf("\t%s := %s\n", strings.Join(decls, ", "), strings.TrimSuffix(strings.Repeat("0, ", len(decls)), ", "))
	g.pf("\tfor %s {\n", strings.Join(conds, " || "))

	// Fragment carries every non-variable block verbatim.
	g.pf("\t\tfrag := &%s{Head: p.Head", m.Name)
	for _, b := range m.Blocks {
		if b.Qty != template.Variable {
			g.pf(", %s: p.%s", b.Name, b.Name)
		}
	}
	g.pf("}\n")
	g.pf("\t\tif len(out) > 0 {\n\t\t\tfrag.Head.AppendedAcks = false\n\t\t\tfrag.Head.AckList = nil\n\t\t}\n")

	base := m.Freq.IDWidth()
	for _, b := range m.Blocks {
		cost, _ := fixedBlockCost(b)
		switch b.Qty {
		case template.Single:
			base += cost
		case template.Multiple:
			base += cost * b.Count
		case template.Variable:
			base++
		}
	}
	// Runtime variable payloads of non-variable blocks count toward the
	// base size too.
	baseExpr := fmt.Sprintf("frag.Head.Len() + %d", base)
	var baseLoops []string
	for _, b := range m.Blocks {
		if b.Qty == template.Variable {
			continue
		}
		_, varFields := fixedBlockCost(b)
		for _, f := range varFields {
			if b.Qty == template.Multiple {
				baseLoops = append(baseLoops,
					fmt.Sprintf("\t\tfor i := range p.%s {\n\t\t\tsize += len(p.%s[i].%s)\n\t\t}\n", b.Name, b.Name, f.Name))
			} else {
				baseExpr += fmt.Sprintf(" + len(p.%s.%s)", b.Name, f.Name)
			}
		}
	}
	g.pf("\t\tsize := %s\n", baseExpr)
	for _, l := range baseLoops {
		g.pf("%s", l)
	}
	g.pf("\t\tplaced := 0\n")

	for _, b := range varBlocks {
		c := cursors[b.Name]
		g.pf("\t\tfor %s < len(p.%s) {\n", c, b.Name)
		g.pf("\t\t\tel := %s\n", elemExpr(b, c))
		g.pf("\t\t\tif placed > 0 && size+el > budget {\n\t\t\t\tbreak\n\t\t\t}\n")
		g.pf("\t\t\tfrag.%s = append(frag.%s, p.%s[%s])\n", b.Name, b.Name, b.Name, c)
		g.pf("\t\t\tsize += el\n\t\t\tplaced++\n\t\t\t%s++\n", c)
		g.pf("\t\t}\n")
	}

	g.pf("\t\tb, err := frag.ToBytes()\n")
	g.pf("\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
	g.pf("\t\tout = append(out, b)\n")
	g.pf("\t}\n")
	g.pf("\tif len(out) == 0 {\n\t\treturn singleDatagram(p)\n\t}\n")
	g.pf("\treturn out, nil\n}\n\n")
}

func (g *generator) decode(m *template.Message) {
	g.pf("func (p *%s) decode(head wire.Header, body []byte) error {\n", m.Name)
	g.pf("\tp.Head = head\n")
	if len(m.Blocks) == 0 {
		g.pf("\treturn nil\n}\n\n")
		return
	}
	g.pf("\tr := primitives.NewReader(body)\n")

	needsCount := false
	for _, b := range m.Blocks {
		if b.Qty == template.Variable {
			needsCount = true
		}
	}
	if needsCount {
		g.pf("\tvar (\n\t\terr   error\n\t\tcount byte\n\t)\n")
	} else {
		g.pf("\tvar err error\n")
	}

	for _, b := range m.Blocks {
		switch b.Qty {
		case template.Single:
			for _, f := range b.Fields {
				g.readField(fmt.Sprintf("p.%s.%s", b.Name, f.Name), f, 1)
			}
		case template.Multiple:
			g.pf("\tfor i := range p.%s {\n", b.Name)
			for _, f := range b.Fields {
				g.readField(fmt.Sprintf("p.%s[i].%s", b.Name, f.Name), f, 2)
			}
			g.pf("\t}\n")
		case template.Variable:
			g.pf("\tif count, err = r.U8(); err != nil {\n\t\treturn err\n\t}\n")
			g.pf("\tp.%s = make([]%s%s, count)\n", b.Name, m.Name, b.Name)
			g.pf("\tfor i := range p.%s {\n", b.Name)
			for _, f := range b.Fields {
				g.readField(fmt.Sprintf("p.%s[i].%s", b.Name, f.Name), f, 2)
			}
			g.pf("\t}\n")
		}
	}
	g.pf("\treturn nil\n}\n\n")
}

func (g *generator) readField(expr string, f template.Field, depth int) {
	ind := strings.Repeat("\t", depth)
	var call string
	switch f.Type {
	case template.TypeFixed:
		call = fmt.Sprintf("r.Fixed(%d)", f.Count)
	case template.TypeVariable:
		call = fmt.Sprintf("r.Variable(%d)", f.Count)
	default:
		call = "r." + readerMethod(f.Type) + "()"
	}
	g.pf("%sif %s, err = %s; err != nil {\n%s\treturn err\n%s}\n", ind, expr, call, ind, ind)
}

func goType(f template.Field) string {
	switch f.Type {
	case template.TypeBool:
		return "bool"
	case template.TypeU8:
		return "byte"
	case template.TypeS8:
		return "int8"
	case template.TypeU16:
		return "uint16"
	case template.TypeS16:
		return "int16"
	case template.TypeU32:
		return "uint32"
	case template.TypeS32:
		return "int32"
	case template.TypeU64:
		return "uint64"
	case template.TypeS64:
		return "int64"
	case template.TypeF32:
		return "float32"
	case template.TypeF64:
		return "float64"
	case template.TypeIPAddr:
		return "[4]byte"
	case template.TypeIPPort:
		return "uint16"
	case template.TypeUUID:
		return "uuid.UUID"
	case template.TypeVector3:
		return "types.Vector3"
	case template.TypeVector3d:
		return "types.Vector3d"
	case template.TypeVector4:
		return "types.Vector4"
	case template.TypeQuaternion:
		return "types.Quaternion"
	default:
		return "[]byte"
	}
}

func writerMethod(t template.FieldType) string {
	switch t {
	case template.TypeBool:
		return "Bool"
	case template.TypeU8:
		return "U8"
	case template.TypeS8:
		return "S8"
	case template.TypeU16:
		return "U16"
	case template.TypeS16:
		return "S16"
	case template.TypeU32:
		return "U32"
	case template.TypeS32:
		return "S32"
	case template.TypeU64:
		return "U64"
	case template.TypeS64:
		return "S64"
	case template.TypeF32:
		return "F32"
	case template.TypeF64:
		return "F64"
	case template.TypeIPAddr:
		return "IPAddr"
	case template.TypeIPPort:
		return "U16BE"
	case template.TypeUUID:
		return "UUID"
	case template.TypeVector3:
		return "Vector3"
	case template.TypeVector3d:
		return "Vector3d"
	case template.TypeVector4:
		return "Vector4"
	case template.TypeQuaternion:
		return "Quaternion"
	default:
		return "U8"
	}
}

func readerMethod(t template.FieldType) string {
	// Reader and Writer share method names for every scalar type.
	return writerMethod(t)
}
