package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/retriever"
	"github.com/Aman-CERP/goldenretriever/pkg/version"
)

// versionReport is the build info plus what this binary can retrieve with.
type versionReport struct {
	version.BuildInfo
	Strategies      []string `json:"strategies"`
	LexicalBackends []string `json:"lexical_backends"`
	VectorBackends  []string `json:"vector_backends"`
	Providers       []string `json:"providers"`
}

func newVersionReport() versionReport {
	return versionReport{
		BuildInfo:       version.GetInfo(),
		Strategies:      names(retriever.Strategies),
		LexicalBackends: names(store.LexicalBackends),
		VectorBackends:  names(store.VectorBackends),
		Providers:       names(embed.Providers),
	}
}

func (r versionReport) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n  strategies: %s\n  lexical backends: %s\n  vector backends: %s\n  providers: %s\n",
		version.String(),
		strings.Join(r.Strategies, ", "),
		strings.Join(r.LexicalBackends, ", "),
		strings.Join(r.VectorBackends, ", "),
		strings.Join(r.Providers, ", "))
	return err
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	var shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and supported strategies",
		Long: `Print the build version, commit and Go version, followed by the
retrieval strategies, index backends and encoder providers compiled in.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if shortOutput {
				_, err := fmt.Fprintln(out, version.Short())
				return err
			}

			report := newVersionReport()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return report.writeText(out)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")

	return cmd
}
