package commands

import (
	"github.com/Houeta/pricewatch/cmd/pricewatch/output"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/Houeta/pricewatch/internal/services/orchestrator"
	"github.com/spf13/cobra"
)

var scrapeReq orchestrator.Request

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape of a site and print the result",
	Example: `  pricewatch scrape --site startech.com.bd --category laptop
  pricewatch scrape --site startech.com.bd --path /component/ram --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer application.close()

		result, err := application.pipeline(alerts.NewLogNotifier(logger)).Run(cmd.Context(), scrapeReq)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), result)
		}
		output.RunResult(cmd.OutOrStdout(), scrapeReq.Site, result)

		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeReq.Site, "site", "", "Site identifier from the registry")
	scrapeCmd.Flags().StringVar(&scrapeReq.CategorySlug, "category", "", "Category slug to scrape")
	scrapeCmd.Flags().StringVar(&scrapeReq.CategoryPath, "path", "", "Raw category path, used when no slug is given")
	_ = scrapeCmd.MarkFlagRequired("site")
}
