package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal/app"
)

var extractCmd = &cobra.Command{
	Use:   "extract <source> --target <directory>",
	Short: "按扩展名或文件名关键字提取文件",
	Long: `把源目录中匹配的文件平铺移动到目标目录，名称冲突时追加 " (n)"。
--ext 和 --keyword 只能指定其中一个。`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	target, _ := cmd.Flags().GetString("target")
	exts, _ := cmd.Flags().GetStringSlice("ext")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")

	ctx, stop := signalContext(cmd)
	defer stop()

	result, err := app.RunExtract(ctx, env, app.ExtractOptions{
		Source:        args[0],
		Target:        target,
		Extensions:    exts,
		Keywords:      keywords,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		return err
	}

	fmt.Printf("已提取 %d 个文件，失败 %d 个\n", result.Moved, result.Errors)
	return nil
}

func init() {
	extractCmd.Flags().StringP("target", "t", "", "提取到的目录 (必需)")
	extractCmd.Flags().StringSliceP("ext", "e", nil, "扩展名，例如 --ext jpg,png")
	extractCmd.Flags().StringSliceP("keyword", "k", nil, "文件名关键字")
	extractCmd.Flags().Bool("case-sensitive", false, "关键字区分大小写")

	if err := extractCmd.MarkFlagRequired("target"); err != nil {
		fmt.Println("提取目录需要给出")
		return
	}

	rootCmd.AddCommand(extractCmd)
}
