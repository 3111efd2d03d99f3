package commands

import (
	"github.com/Houeta/pricewatch/cmd/pricewatch/output"
	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List supported sites and their category slugs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), output.SiteList(registry))
		}
		output.Sites(cmd.OutOrStdout(), registry)

		return nil
	},
}
