// Package main provides the entry point for the goldenretriever CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/goldenretriever/cmd/goldenretriever/cmd"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, rerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
