package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/python-discord/blurple/internal/pyparse"
)

// checkCmd validates that files parse without formatting them.
var checkCmd = &cobra.Command{
	Use:   "check [files]",
	Short: "Check that Python source parses",
	Long: `Parses the named files (or standard input) without formatting and
reports the position of the first syntax error in each. Exits non-zero
when any input fails.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		source, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if checkSource(ctx, "<stdin>", []byte(stripFences(string(source))), out) != nil {
			return errors.New("input does not parse")
		}
		return nil
	}

	failed := 0
	for _, path := range args {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if checkSource(ctx, path, source, out) != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files do not parse", failed, len(args))
	}
	return nil
}

// checkSource parses one source and prints a styled verdict line.
func checkSource(ctx context.Context, name string, source []byte, out io.Writer) error {
	tree, err := pyparse.Parse(ctx, source)
	if err != nil {
		fmt.Fprintf(out, "%s %s: %s\n", failStyle.Render("✗"), pathStyle.Render(name), err.Error())
		return err
	}
	tree.Close()

	fmt.Fprintf(out, "%s %s\n", okStyle.Render("✓"), pathStyle.Render(name))
	return nil
}
