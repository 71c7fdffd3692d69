package main

import "github.com/spf13/pflag"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	config    string
	verbose   bool
	quiet     bool
	logFormat string
}

// addRootFlags registers the persistent flags on fs.
func addRootFlags(fs *pflag.FlagSet, f *rootFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path or name")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details to stderr")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
}
