package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal/app"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <directories...>",
	Short: "统计目录中的文件数量和大小",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		types, _ := cmd.Flags().GetBool("types")
		summaries, err := app.RunSummary(env, args, types)
		if err != nil {
			return err
		}

		for _, ds := range summaries {
			fmt.Printf("%s: %s\n", ds.Dir, ds.Summary)
			for _, tc := range ds.Types {
				fmt.Printf("  %-40s %d\n", tc.MIME, tc.Count)
			}
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().Bool("types", false, "根据文件头统计文件类型")

	rootCmd.AddCommand(summaryCmd)
}
