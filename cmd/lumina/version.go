package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/lumina/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		dirty   bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, version.Read(), dirty, verbose)
		},
	}
	cmd.Flags().BoolVar(&dirty, "dirty", false, "mark builds from a modified tree with +dirty")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print revision, build time and toolchain")
	return cmd
}

func printVersion(cmd *cobra.Command, info version.Info, dirty, verbose bool) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s %s\n", info.Module, info.String(dirty)); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	if info.Revision != "" {
		fmt.Fprintf(out, "revision %s\n", info.Revision)
	}
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(out, "built    %s\n", info.BuildTime.Format(time.RFC3339))
	}
	if info.GoVersion != "" {
		fmt.Fprintf(out, "go       %s\n", info.GoVersion)
	}
	return nil
}
