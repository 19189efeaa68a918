package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal/app"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source> <destination>",
	Short: "把源目录合并到目标目录",
	Long: `比较两个目录的内容哈希:
- 目标目录中已有的内容会从源目录删除
- 其余文件保持相对路径移动到目标目录，名称冲突时追加 " (n)"

使用 --dry-run 只显示合并方案。`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	opts := app.MergeOptions{
		Source:         args[0],
		Destination:    args[1],
		Algorithm:      env.Config.Organise.HashAlgorithm,
		SkipLargerThan: env.Config.Organise.SkipLargerThan,
		Workers:        env.Config.Performance.Workers,
		DryRun:         dryRun,
	}
	if cmd.Flags().Changed("algorithm") {
		opts.Algorithm, _ = cmd.Flags().GetString("algorithm")
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	result, err := app.RunMerge(ctx, env, opts)
	if err != nil {
		return err
	}

	if dryRun {
		for _, d := range result.Plan.Duplicates {
			fmt.Printf("删除  %s  (同 %s)\n", d.Source.Path, d.Match.Path)
		}
		for _, u := range result.Plan.Unique {
			fmt.Printf("移动  %s -> %s\n", u.Source.Path, u.Target)
		}
		fmt.Println(result.Plan.String())
		return nil
	}

	stats := result.Stats
	logger.Get().Info().
		Int("deleted", stats.Deleted).
		Int("moved", stats.Moved).
		Int("errors", stats.Errors).
		Str("freed", humanize.IBytes(uint64(stats.FreedSpace))).
		Msg("合并完成")
	fmt.Printf("删除重复文件 %d 个（释放 %s），移动 %d 个，失败 %d 个\n",
		stats.Deleted, humanize.IBytes(uint64(stats.FreedSpace)), stats.Moved, stats.Errors)
	return nil
}

func init() {
	mergeCmd.Flags().Bool("dry-run", false, "预览模式，不实际修改文件")
	mergeCmd.Flags().StringP("algorithm", "a", "", "哈希算法: xxhash, md5, sha256")
	mergeCmd.Flags().IntP("workers", "w", 0, "并发计算哈希的协程数")

	rootCmd.AddCommand(mergeCmd)
}
