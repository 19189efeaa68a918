package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "查看操作日志",
	Long: `不带参数时列出最近的运行，给出运行 ID 时列出该次运行的每个操作。
中断的运行不会回滚，可以据此手动核对文件位置。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}

		history, err := app.RunHistory(env, runID, limit)
		if err != nil {
			return err
		}

		for _, r := range history.Runs {
			fmt.Printf("%s  %-8s %-8s 重复 %d  非重复 %d  %s\n", r.RunID, r.Kind, r.Status,
				r.Duplicates, r.NonDuplicates, r.StartedAt.Format("2006-01-02 15:04:05"))
		}
		for _, e := range history.Entries {
			line := fmt.Sprintf("%-14s %s -> %s", e.Action, e.Source, e.Destination)
			if e.Error != "" {
				line += "  错误: " + e.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "最多列出的运行数")

	rootCmd.AddCommand(historyCmd)
}
