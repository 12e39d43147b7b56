package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/lumina/core"
	"pkt.systems/lumina/internal/appconfig"
)

func newResolveCmd() *cobra.Command {
	var cfgPath string
	var engine string
	cmd := &cobra.Command{
		Use:   "resolve <input>...",
		Short: "Print the URL address bar input resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if engine != "" {
				cfg.Session.SearchEngine = engine
				cfg.Session.SearchURL = ""
			}
			serviceCfg, err := cfg.ServiceConfig()
			if err != nil {
				return err
			}
			resolver := core.NewResolver(serviceCfg.SearchURL)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(strings.Join(args, " ")))
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&engine, "engine", "", "search engine (google, duckduckgo, bing)")
	return cmd
}
