package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <directories...> --dest <destination>",
	Short: "把空目录移到目标目录的 To Be Deleted/empty folders",
	Long: `反复查找只包含空目录或隐藏文件的目录，直到没有新的空目录为止。
目录不会被删除，只会移到 To Be Deleted/empty folders。`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	dest, _ := cmd.Flags().GetString("dest")

	ctx, stop := signalContext(cmd)
	defer stop()

	moved, err := app.RunSweep(ctx, env, args, dest)
	if err != nil {
		return err
	}

	fmt.Printf("已移动 %d 个空目录到 %s\n", moved, internal.EmptyFoldersDir(dest))
	return nil
}

func init() {
	sweepCmd.Flags().StringP("dest", "d", "", "目标目录 (必需)")
	if err := sweepCmd.MarkFlagRequired("dest"); err != nil {
		fmt.Println("目标目录需要给出")
		return
	}

	rootCmd.AddCommand(sweepCmd)
}
