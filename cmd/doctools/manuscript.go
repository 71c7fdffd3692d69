package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newManuscriptCmd(env *Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manuscript FILE.md",
		Short: "Print one manuscript page with lint warnings",
		Long: `Split FILE.md into pages on "---" lines and print the requested page as
JSON with its page id ("NN/TT") and image warnings: external images,
missing local files, missing alt text and images used more than once.`,
		Example: `  doctools manuscript book.md --page 3`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManuscript(cmd, env, args[0])
		},
	}
	cmd.Flags().IntP("page", "p", 1, "page number, starting at 1")
	return cmd
}

func runManuscript(cmd *cobra.Command, env *Environment, path string) error {
	page, _ := cmd.Flags().GetInt("page")

	tk, err := newToolkit(env)
	if err != nil {
		return err
	}
	defer closeToolkit(env, tk)

	res, err := tk.Manuscripts().Inspect(cmd.Context(), path, page)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
