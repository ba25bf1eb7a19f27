package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/python-discord/blurple/internal/uwu"
)

var (
	uwuSeed    int64
	uwuStutter float64
	uwuEmoji   float64
)

// uwuCmd transforms text, not code.
var uwuCmd = &cobra.Command{
	Use:   "uwu [text]",
	Short: "Uwuify text",
	Long: `Transforms text into its uwu rendition: word substitutions,
nya-ification, w-folding, seeded stutters and emoticons. Reads standard
input when no text is given.

Examples:
  blurple uwu "hello world"
  blurple uwu --stutter 0.5 --seed 7 "what does the fox say"`,
	RunE: runUwu,
}

func init() {
	uwuCmd.Flags().Int64Var(&uwuSeed, "seed", 0, "Pin the random stream (0 draws from the clock)")
	uwuCmd.Flags().Float64Var(&uwuStutter, "stutter", -1, "Stutter probability in [0, 1] (default from config)")
	uwuCmd.Flags().Float64Var(&uwuEmoji, "emoji", -1, "Emoticon probability in [0, 1] (default from config)")
	rootCmd.AddCommand(uwuCmd)
}

func runUwu(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" || text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	stutter := cfg.Uwu.StutterStrength
	if uwuStutter >= 0 {
		stutter = uwuStutter
	}
	emoji := cfg.Uwu.EmojiStrength
	if uwuEmoji >= 0 {
		emoji = uwuEmoji
	}

	opts := []uwu.Option{
		uwu.WithStutterStrength(stutter),
		uwu.WithEmojiStrength(emoji),
	}
	if uwuSeed != 0 {
		opts = append(opts, uwu.WithSeed(uwuSeed))
	}

	fmt.Fprintln(cmd.OutOrStdout(), uwu.New(opts...).Transform(text))
	return nil
}
