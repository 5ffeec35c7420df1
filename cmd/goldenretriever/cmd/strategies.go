package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	"github.com/Aman-CERP/goldenretriever/internal/fuzzy"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/retriever"
)

// strategyInfo describes one strategy for the strategies command.
type strategyInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Options     []string            `json:"options"`
	Choices     map[string][]string `json:"choices,omitempty"`
}

var strategyDescriptions = map[retriever.Strategy]string{
	retriever.Lexical:         "BM25 over tokenized text",
	retriever.Fuzzy:           "approximate string matching, every document scored",
	retriever.VectorSymmetric: "one encoder for documents and queries",
	retriever.VectorDual:      "separate document and query encoders of equal dimension",
}

func describeStrategies() []strategyInfo {
	vectorChoices := map[string][]string{
		retriever.OptProvider:      names(embed.Providers),
		retriever.OptVectorBackend: names(store.VectorBackends),
	}

	infos := make([]strategyInfo, 0, len(retriever.Strategies))
	for _, s := range retriever.Strategies {
		info := strategyInfo{
			Name:        s.String(),
			Description: strategyDescriptions[s],
			Options:     retriever.RecognizedOptions(s),
		}
		switch s {
		case retriever.Lexical:
			info.Choices = map[string][]string{retriever.OptLexicalBackend: names(store.LexicalBackends)}
		case retriever.Fuzzy:
			info.Choices = map[string][]string{retriever.OptFuzzyScoringFunction: fuzzy.Names()}
		default:
			info.Choices = vectorChoices
		}
		infos = append(infos, info)
	}
	return infos
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func newStrategiesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List retrieval strategies and the options each accepts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := describeStrategies()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			w := cmd.OutOrStdout()
			for i, info := range infos {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s\n  %s\n", info.Name, info.Description)
				fmt.Fprintf(w, "  options: %s\n", strings.Join(info.Options, ", "))
				for _, opt := range info.Options {
					if choices, ok := info.Choices[opt]; ok {
						fmt.Fprintf(w, "  %s: %s\n", opt, strings.Join(choices, ", "))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
