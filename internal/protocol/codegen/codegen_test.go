package codegen

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/protocol/template"
)

func generateTestdata(t *testing.T) string {
	t.Helper()
	f, err := os.Open("../template/testdata/message_template.msg")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	tmpl, err := template.Parse(f, nil)
	require.NoError(t, err)

	// Generate runs the output through go/format, so a nil error already
	// proves the emitted source parses.
	src, err := Generate(tmpl, "packets", "message_template.msg")
	require.NoError(t, err)
	return string(src)
}

func TestGenerateEmitsEveryMessage(t *testing.T) {
	src := generateTestdata(t)

	for _, name := range []string{
		"StartPingCheck", "CompletePingCheck", "AgentUpdate", "LayerData",
		"ImprovedTerseObjectUpdate", "CoarseLocationUpdate", "TestMessage",
		"UseCircuitCode", "ChatFromViewer", "AgentThrottle",
		"ChatFromSimulator", "RegionHandshake", "RegionHandshakeReply",
		"EnableSimulator", "DisableSimulator", "KickUser",
		"CompleteAgentMovement", "AgentMovementComplete", "LogoutRequest",
		"LogoutReply", "PacketAck", "OpenCircuit", "CloseCircuit",
	} {
		assert.Contains(t, src, "type "+name+" struct", name)
		assert.Contains(t, src, "func New"+name+"()", name)
		assert.Contains(t, src, "func (p *"+name+") ToBytes()", name)
		assert.Contains(t, src, "func (p *"+name+") Length()", name)
		assert.Contains(t, src, "Type"+name+":", name)
	}
}

func TestGenerateHeader(t *testing.T) {
	src := generateTestdata(t)
	assert.True(t, strings.HasPrefix(src, "// Code generated by msggen from message_template.msg. DO NOT EDIT."))
	assert.Contains(t, src, "package packets")
}

func TestGenerateTypeTags(t *testing.T) {
	// gofmt aligns the const block, so match with flexible spacing.
	src := generateTestdata(t)
	assert.Regexp(t, `TypeTestMessage\s+PacketType = PacketType\(template\.Low\)<<24 \| 1\n`, src)
	assert.Regexp(t, `TypePacketAck\s+PacketType = PacketType\(template\.Fixed\)<<24 \| 251\n`, src)
	assert.Regexp(t, `TypeCoarseLocationUpdate\s+PacketType = PacketType\(template\.Medium\)<<24 \| 6\n`, src)
}

func TestGenerateZerocodedConstructor(t *testing.T) {
	src := generateTestdata(t)
	assert.Contains(t, src, "p.Head.Zerocoded = true")
}

func TestGenerateSplitsVariableBlocks(t *testing.T) {
	src := generateTestdata(t)
	// Messages with variable-multiplicity blocks get a real splitter;
	// fixed-layout messages delegate to singleDatagram.
	assert.Contains(t, src, "func (p *LayerData) ToBytesMultiple() ([][]byte, error) {\n\tbudget := MTU - splitAckHeadroom")
	assert.Contains(t, src, "func (p *UseCircuitCode) ToBytesMultiple() ([][]byte, error) { return singleDatagram(p) }")
}

func TestCheckedInSourceCoversManifest(t *testing.T) {
	// Guards against the checked-in packets.gen.go falling behind the
	// manifest. Regenerate with:
	//   gridlink generate internal/protocol/template/testdata/message_template.msg \
	//     -o internal/protocol/packets/packets.gen.go
	f, err := os.Open("../template/testdata/message_template.msg")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	tmpl, err := template.Parse(f, nil)
	require.NoError(t, err)

	disk, err := os.ReadFile("../packets/packets.gen.go")
	require.NoError(t, err)
	src := string(disk)
	for _, m := range tmpl.Messages {
		assert.Contains(t, src, "type "+m.Name+" struct", m.Name)
	}
}
