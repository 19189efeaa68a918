package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "file-organiser",
	Short: "按类型和年份整理文件并隔离重复文件",
	Long: `File Organiser 是一个命令行工具，用于把杂乱的目录整理到一个目标目录中。

主要功能:
- 计算源文件和目标目录中已有文件的内容哈希
- 按扩展名和修改年份把文件放入 Categorised
- 名称形如 "name (1).ext" 的重复文件放入 Duplicates
- 目标目录中已存在的内容放入 To Be Deleted，由用户确认后删除
- 把处理完的空目录移到 To Be Deleted/empty folders
- 合并两个目录、按扩展名或关键字提取文件`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "配置文件路径（默认 $HOME/.file-organiser/config.yaml）")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "日志文件路径")
	rootCmd.PersistentFlags().Bool("journal", false, "把每次移动和删除记录到操作日志数据库")
}

// setup 根据全局参数加载配置、初始化日志和操作日志
func setup(cmd *cobra.Command, quiet bool) (*app.Env, error) {
	configFile, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	journal, _ := cmd.Flags().GetBool("journal")

	return app.Setup(app.SetupOptions{
		ConfigFile: configFile,
		LogLevel:   logLevel,
		LogFile:    logFile,
		Quiet:      quiet,
		Journal:    journal,
	})
}

// signalContext 收到 SIGINT 或 SIGTERM 时取消
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
