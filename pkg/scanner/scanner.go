package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

type FileWalker struct {
	fs afero.Fs
	// Exclude 中的目录及其子目录不会被遍历
	Exclude []string
}

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{fs: fs}
}

func (w *FileWalker) Walk(root string, callback func(path string, info os.FileInfo) error) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("访问路径出错")
			return nil
		}

		if info.IsDir() {
			if path != root && w.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		return callback(path, info)
	})
}

func (w *FileWalker) excluded(path string) bool {
	for _, dir := range w.Exclude {
		if filepath.Clean(dir) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// Collect 遍历所有目录，返回按路径排序的文件快照
func (w *FileWalker) Collect(dirs []string) ([]internal.FileHandle, error) {
	var files []internal.FileHandle
	for _, dir := range dirs {
		err := w.Walk(dir, func(path string, info os.FileInfo) error {
			files = append(files, internal.FileHandle{
				Path:    path,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
			return nil
		})
		if err != nil {
			logger.Get().Error().Err(err).Msgf("扫描目录失败: %s", dir)
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
