package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mwconv/internal/driver"
	"mwconv/internal/errors"
	"mwconv/internal/render"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] <file|->",
		Short: "Print the lexer's token stream without expanding anything",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|html|msgpack)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	input := args[0]
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	var res *driver.TokenizeResult
	if input == "-" {
		src, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return errors.Wrap(readErr, "reading stdin")
		}
		res = driver.TokenizeSource(stdinName, src, maxDiagnostics)
	} else {
		res, err = driver.Tokenize(input, maxDiagnostics)
		if err != nil {
			return errors.Wrapf(err, "loading %s", input)
		}
	}

	if err := render.Write(cmd.OutOrStdout(), res.Tokens, render.Options{
		Format: format,
		Files:  res.FileSet,
		Color:  format == render.FormatPretty && !color.NoColor,
	}); err != nil {
		return err
	}
	if res.Bag.Len() > 0 {
		printDiagnostics(cmd, res.Bag.Items(), res.FileSet)
	}
	if res.Bag.HasErrors() {
		return errors.New("tokenization produced errors")
	}
	return nil
}
