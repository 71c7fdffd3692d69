package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	doctools "github.com/alnah/go-doctools"
)

// defaultJobs bounds concurrent downloads.
const defaultJobs = 4

func newDownloadCmd(env *Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download URL OUTPUT [URL OUTPUT ...]",
		Short: "Download files, reporting image resolution",
		Long: `Download each URL to its OUTPUT path. Parent directories are created.
Transient failures are retried with linear backoff (fetch.retries attempts).
Outputs with an image extension are decoded and their resolution reported.`,
		Example: `  doctools download https://example.com/cover.png assets/cover.png
  doctools download --jobs 2 https://a.example/1.jpg 1.jpg https://b.example/2.jpg 2.jpg`,
		Args: usageArgs(func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected URL OUTPUT pairs, got %d argument(s)", len(args))
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, env, args)
		},
	}
	cmd.Flags().IntP("jobs", "j", defaultJobs, "concurrent downloads")
	return cmd
}

// downloadJob is one URL OUTPUT pair and its outcome.
type downloadJob struct {
	url    string
	output string
	result *doctools.DownloadResult
	err    error
}

func runDownload(cmd *cobra.Command, env *Environment, args []string) error {
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		return fmt.Errorf("%w: --jobs must be at least 1", ErrUsage)
	}

	tk, err := newToolkit(env)
	if err != nil {
		return err
	}
	defer closeToolkit(env, tk)

	pending := make([]*downloadJob, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pending = append(pending, &downloadJob{url: args[i], output: args[i+1]})
	}

	ctx := cmd.Context()
	fetcher := tk.Fetcher()

	// Failures are collected per job so one bad URL does not cancel the rest.
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, job := range pending {
		g.Go(func() error {
			job.result, job.err = fetcher.Download(ctx, job.url, job.output)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, job := range pending {
		if job.err != nil {
			fmt.Fprintf(env.Stderr, "%s: %v\n", job.url, job.err)
			errs = append(errs, job.err)
			continue
		}
		fmt.Fprintln(env.Stdout, job.result.String())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d download(s) failed: %w", len(errs), len(pending), errors.Join(errs...))
	}
	return nil
}
