package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:          "deepresearch",
		Short:        "Sector research agents with a human approval gate",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config and .)")

	root.AddCommand(serveCMD(&cfgPath), researchCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
