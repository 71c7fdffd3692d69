package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// stdinArg selects standard input as the table source.
const stdinArg = "-"

func newTableCmd(env *Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table INPUT OUTPUT",
		Short: "Render a Markdown table to an image",
		Long: `Render the Markdown table in INPUT to OUTPUT. Use - to read the table
from stdin. The image format follows the OUTPUT extension: .jpg and .jpeg
write JPEG, anything else writes PNG.

--css takes inline CSS or a path to a CSS file; it is applied after the
configured table style.`,
		Example: `  doctools table results.md results.png
  printf '| a | b |\n|---|---|\n| 1 | 2 |\n' | doctools table - out.png --css 'th { color: teal; }'`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, env, args[0], args[1])
		},
	}
	cmd.Flags().String("css", "", "inline CSS or CSS file path")
	return cmd
}

func runTable(cmd *cobra.Command, env *Environment, input, output string) error {
	markdown, err := readInput(env.Stdin, input)
	if err != nil {
		return err
	}
	cssArg, _ := cmd.Flags().GetString("css")
	css, err := resolveCSS(cssArg)
	if err != nil {
		return err
	}

	tk, err := newToolkit(env)
	if err != nil {
		return err
	}
	defer closeToolkit(env, tk)

	if err := tk.Tables().Render(cmd.Context(), markdown, output, css); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Markdown table converted to image and saved to %s\n", output)
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinArg {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided input
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

// resolveCSS returns inline CSS as-is and reads anything else as a file.
func resolveCSS(arg string) (string, error) {
	if arg == "" || fileutil.IsCSS(arg) {
		return arg, nil
	}
	data, err := os.ReadFile(arg) // #nosec G304 -- user-provided CSS path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(data), nil
}
