package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gridlink/gridlink/internal/protocol/template"
)

var templateCmd = &cobra.Command{
	Use:   "template <message_template.msg> [message name]",
	Short: "Parse a message template and describe its messages",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		tmpl, err := template.Parse(f, nil)
		if err != nil {
			return err
		}

		if len(args) == 2 {
			m := tmpl.Lookup(args[1])
			if m == nil {
				return fmt.Errorf("message %q not in template", args[1])
			}
			describe(m)
			return nil
		}

		msgs := append([]*template.Message(nil), tmpl.Messages...)
		sort.Slice(msgs, func(i, j int) bool {
			if msgs[i].Freq != msgs[j].Freq {
				return msgs[i].Freq < msgs[j].Freq
			}
			return msgs[i].ID < msgs[j].ID
		})
		fmt.Printf("template version %s, %d messages\n", tmpl.Version, len(msgs))
		for _, m := range msgs {
			fmt.Printf("%-6s %5d  %s\n", m.Freq, m.ID, m.Name)
		}
		return nil
	},
}

func describe(m *template.Message) {
	trust := "NotTrusted"
	if m.Trusted {
		trust = "Trusted"
	}
	enc := "Unencoded"
	if m.Zerocoded {
		enc = "Zerocoded"
	}
	fmt.Printf("%s %s %d %s %s\n", m.Name, m.Freq, m.ID, trust, enc)
	for _, b := range m.Blocks {
		switch b.Qty {
		case template.Multiple:
			fmt.Printf("  %s %s %d\n", b.Name, b.Qty, b.Count)
		default:
			fmt.Printf("  %s %s\n", b.Name, b.Qty)
		}
		for _, f := range b.Fields {
			switch f.Type {
			case template.TypeFixed, template.TypeVariable:
				fmt.Printf("    %s %s %d\n", f.Name, f.Type, f.Count)
			default:
				fmt.Printf("    %s %s\n", f.Name, f.Type)
			}
		}
	}
}
