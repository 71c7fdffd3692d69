package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	doctools "github.com/alnah/go-doctools"
	"github.com/alnah/go-doctools/internal/fileutil"
)

func newSlideCmd(env *Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slide FILE.html",
		Short: "Render an HTML slide to a JPEG preview",
		Long: `Render FILE.html as a single presentation slide and export it as JPEG.
Without --output the image is printed as a data URI.

Aspect ratios: widescreen (1280x720), normal (960x720), A1 (720x1018, portrait).`,
		Example: `  doctools slide slides/intro.html --output intro.jpg
  doctools slide slides/intro.html --aspect-ratio normal`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlide(cmd, env, args[0])
		},
	}
	cmd.Flags().String("aspect-ratio", string(doctools.DefaultAspectRatio), "widescreen, normal or A1")
	cmd.Flags().StringP("output", "o", "", "write the JPEG here instead of printing a data URI")
	return cmd
}

func runSlide(cmd *cobra.Command, env *Environment, htmlFile string) error {
	aspect, _ := cmd.Flags().GetString("aspect-ratio")
	output, _ := cmd.Flags().GetString("output")

	tk, err := newToolkit(env)
	if err != nil {
		return err
	}
	defer closeToolkit(env, tk)

	img, err := tk.Slides().Inspect(cmd.Context(), htmlFile, doctools.AspectRatio(aspect))
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Fprintln(env.Stdout, img.DataURI())
		return nil
	}
	if err := writeOutput(output, img.Data); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Slide rendered to %s\n", output)
	return nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- user output file
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
