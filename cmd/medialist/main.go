package main

import (
	"os"

	"github.com/spf13/cobra"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
)

var debug bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "medialist",
		Short:        "Media list filters: HTTP API and URL tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newURLCmd(lf.NewCodec(nil, nil, nil)))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
