package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gridlink/gridlink/internal/protocol/codegen"
	"github.com/gridlink/gridlink/internal/protocol/template"
)

var (
	generateOut string
	generatePkg string
)

var generateCmd = &cobra.Command{
	Use:   "generate <message_template.msg>",
	Short: "Generate the packets source from a message template",
	Args:  cobra.ExactArgs(1),
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

		src, err := codegen.Generate(tmpl, generatePkg, filepath.Base(args[0]))
		if err != nil {
			return err
		}

		if generateOut == "-" {
			_, err = os.Stdout.Write(src)
			return err
		}
		if err := os.WriteFile(generateOut, src, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d messages)\n", generateOut, len(tmpl.Messages))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "packets.gen.go", "output file, or - for stdout")
	generateCmd.Flags().StringVar(&generatePkg, "package", "packets", "package name for the generated source")
}
