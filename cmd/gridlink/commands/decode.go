package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/internal/protocol/wire"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex datagram | ->",
	Short: "Decode a captured UDP datagram and dump its header and message",
	Long: `Decode parses one datagram as captured off the wire: header flags,
sequence, appended acks, zero-coding, message id, and the typed body.
Pass the bytes as a hex string (whitespace ignored), or - to read hex
from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		if in == "-" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			in = string(raw)
		}
		in = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == ':' {
				return -1
			}
			return r
		}, in)
		data, err := hex.DecodeString(in)
		if err != nil {
			return fmt.Errorf("decode hex: %w", err)
		}

		head, bodyStart, bodyEnd, err := wire.ParseHeader(data)
		if err != nil {
			return err
		}
		fmt.Printf("flags: zerocoded=%v reliable=%v resent=%v acks=%v\n",
			head.Zerocoded, head.Reliable, head.Resent, head.AppendedAcks)
		fmt.Printf("sequence: %d\n", head.Sequence)
		if len(head.Extra) > 0 {
			fmt.Printf("extra: %x\n", head.Extra)
		}
		if len(head.AckList) > 0 {
			fmt.Printf("appended acks: %v\n", head.AckList)
		}
		fmt.Printf("payload region: bytes %d..%d\n", bodyStart, bodyEnd)

		pkt, err := packets.FromBytes(data)
		if err != nil {
			return err
		}
		t := pkt.Type()
		fmt.Printf("message: %s (%s %d), length %d\n", t, t.Freq(), t.ID(), pkt.Length())
		fmt.Printf("%+v\n", pkt)
		return nil
	},
}
