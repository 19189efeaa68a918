package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/internal/app"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/organiser"
	"github.com/moyu-x/file-organiser/tui"
)

var organiseCmd = &cobra.Command{
	Use:   "organise <directories...> --dest <destination>",
	Short: "整理目录中的文件到目标目录",
	Long: `处理源目录中的文件并整理到目标目录:
1. 计算目标目录中已有文件的哈希
2. 计算源文件的哈希
3. 新文件按扩展名和年份放入 Categorised，"name (1).ext" 形式的副本放入 Duplicates，
   目标目录中已有的内容放入 To Be Deleted
4. 把清空的源目录移到 To Be Deleted/empty folders

文件从不被覆盖或删除，名称冲突时追加 " (n)"。`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOrganise,
}

func runOrganise(cmd *cobra.Command, args []string) error {
	useTUI, _ := cmd.Flags().GetBool("tui")

	env, err := setup(cmd, useTUI)
	if err != nil {
		return err
	}
	defer env.Close()

	dest, _ := cmd.Flags().GetString("dest")
	opts := env.OrganiseFromConfig(args, dest)

	if cmd.Flags().Changed("algorithm") {
		opts.Algorithm, _ = cmd.Flags().GetString("algorithm")
	}
	if cmd.Flags().Changed("skip-larger-than") {
		raw, _ := cmd.Flags().GetString("skip-larger-than")
		limit, err := humanize.ParseBytes(raw)
		if err != nil {
			return fmt.Errorf("无效的大小 %q: %w", raw, err)
		}
		opts.SkipLargerThan = int64(limit)
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("sniff") {
		opts.Sniff, _ = cmd.Flags().GetBool("sniff")
	}

	var runID string
	opts.OnSession = func(s *organiser.Session) {
		runID = s.ID
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	var stats internal.ProcessStats
	if useTUI {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		err = tui.Run("正在整理文件", func(n internal.Notifier) error {
			opts.Notifier = n
			var runErr error
			stats, runErr = app.RunOrganise(ctx, env, opts)
			return runErr
		}, cancel)
	} else {
		stats, err = app.RunOrganise(ctx, env, opts)
	}
	if runID != "" && env.Journal != nil {
		fmt.Printf("运行 ID: %s，可用 history %s 查看每个操作\n", runID, runID)
	}
	if err != nil {
		return err
	}

	printOrganiseStats(stats)
	for _, ds := range app.DestinationSummary(env, opts.Destination) {
		fmt.Printf("  %-12s %s\n", ds.Dir, ds.Summary)
	}
	return nil
}

func printOrganiseStats(stats internal.ProcessStats) {
	duration := stats.EndTime.Sub(stats.StartTime).Round(time.Second)
	logger.Get().Info().
		Dur("duration", duration).
		Int("duplicates", stats.Duplicates).
		Int("non_duplicates", stats.NonDuplicates).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Int("swept_folders", stats.SweptFolders).
		Msg("整理完成")

	fmt.Printf("重复文件 %d 个，非重复文件 %d 个，跳过哈希 %d 个，失败 %d 个，清理空目录 %d 个，耗时 %s\n",
		stats.Duplicates, stats.NonDuplicates, stats.Skipped, stats.Errors, stats.SweptFolders, duration)
	if stats.Duplicates > 0 {
		fmt.Println("重复文件已移到 Duplicates 和 To Be Deleted，请确认后手动删除")
	}
}

func init() {
	organiseCmd.Flags().StringP("dest", "d", "", "目标目录 (必需)")
	organiseCmd.Flags().StringP("algorithm", "a", internal.DefaultAlgorithm, "哈希算法: xxhash, md5, sha256")
	organiseCmd.Flags().String("skip-larger-than", "0", "超过该大小的文件不计算哈希，例如 4GiB；0 表示不限制")
	organiseCmd.Flags().IntP("workers", "w", internal.DefaultWorkers, "并发计算哈希的协程数")
	organiseCmd.Flags().Bool("sniff", false, "根据文件头识别没有扩展名的文件")
	organiseCmd.Flags().Bool("tui", false, "使用终端界面显示进度")

	if err := organiseCmd.MarkFlagRequired("dest"); err != nil {
		fmt.Println("目标目录需要给出")
		return
	}

	rootCmd.AddCommand(organiseCmd)
}
