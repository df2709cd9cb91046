package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	zminus "go.zminus.dev/pkg"
)

var version = "0.1.0"

var tokensCmd = &cobra.Command{
	Use:   "tokens <source.zmm>",
	Short: "Print the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lexer, err := openLexer(args[0])
		if err != nil {
			return err
		}

		tokens, err := lexer.RunBlocking()
		if err != nil {
			rep.Error(err)
			return errReported
		}

		out := cmd.OutOrStdout()
		for _, tok := range tokens {
			fmt.Fprintf(out, "%d:%d\t%s\n", tok.Loc.Line, tok.Loc.Col, tok)
		}

		return nil
	},
}

var astCmd = &cobra.Command{
	Use:   "ast <source.zmm>",
	Short: "Print the syntax tree of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lexer, err := openLexer(args[0])
		if err != nil {
			return err
		}

		tokens, err := lexer.RunBlocking()
		if err != nil {
			rep.Error(err)
			return errReported
		}

		prog, err := zminus.NewParser(lexer.GetFilename(), tokens).Run()
		if err != nil {
			rep.Error(err)
			return errReported
		}

		_, err = pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", prog)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the compiler version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zmc version %s\n", version)
	},
}

func openLexer(filename string) (*zminus.Lexer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	defer f.Close()

	return zminus.NewLexerFromReader(filename, f)
}
