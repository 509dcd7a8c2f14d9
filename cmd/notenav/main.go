// Command notenav projects a directory of markdown notes into the
// grouped, searchable list the navigator presents: one-shot listings,
// full-text search, a live-updating watch session, and an interactive
// browser.
package main

import (
	"fmt"
	"os"

	"notenav/internal/config"
	"notenav/internal/log"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfgPath string
	debug   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "notenav",
		Short:   "A live list view over a folder of notes",
		Long:    `Notenav projects a folder of markdown notes into a pinned, grouped, searchable list that stays current as files change.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetDebug(true)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(browseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFile(cfgPath)
	}
	return config.Load()
}
