package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/mover"
	"github.com/moyu-x/file-organiser/pkg/scanner"
)

var ErrNoPatterns = errors.New("no extensions or keywords given")

// Result 一次提取的结果，单个文件失败不会中断
type Result struct {
	Moved  int
	Errors []error
}

// Extractor 把匹配的文件平铺移动到一个目录
type Extractor struct {
	fs    afero.Fs
	mover *mover.Mover
}

func New(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs, mover: mover.New(fs)}
}

// NormalizeExtensions 转为小写并补全前导点，忽略空项
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// ByExtension 移动文件名以任一扩展名结尾的文件
func (e *Extractor) ByExtension(ctx context.Context, source, target string, exts []string) (Result, error) {
	exts = NormalizeExtensions(exts)
	if len(exts) == 0 {
		return Result{}, ErrNoPatterns
	}

	return e.extract(ctx, source, target, func(name string) bool {
		name = strings.ToLower(name)
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	})
}

// ByKeyword 移动文件名中包含任一关键字的文件
func (e *Extractor) ByKeyword(ctx context.Context, source, target string, keywords []string, caseSensitive bool) (Result, error) {
	var kws []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if !caseSensitive {
			kw = strings.ToLower(kw)
		}
		kws = append(kws, kw)
	}
	if len(kws) == 0 {
		return Result{}, ErrNoPatterns
	}

	return e.extract(ctx, source, target, func(name string) bool {
		if !caseSensitive {
			name = strings.ToLower(name)
		}
		for _, kw := range kws {
			if strings.Contains(name, kw) {
				return true
			}
		}
		return false
	})
}

func (e *Extractor) extract(ctx context.Context, source, target string, match func(name string) bool) (Result, error) {
	var result Result

	info, err := e.fs.Stat(source)
	if err != nil {
		return result, err
	}
	if !info.IsDir() {
		return result, internal.ErrNotDirectory
	}
	if err := e.fs.MkdirAll(target, 0755); err != nil {
		return result, err
	}

	walker := scanner.NewFileWalker(e.fs)
	walker.Exclude = []string{target}
	files, err := walker.Collect([]string{source})
	if err != nil {
		return result, err
	}

	for _, f := range files {
		if ctx.Err() != nil {
			return result, internal.ErrCancelled
		}

		name := filepath.Base(f.Path)
		if !match(name) {
			continue
		}

		final, err := e.mover.MoveWithCollisionHandling(f.Path, filepath.Join(target, name))
		if err != nil {
			logger.Get().Error().Err(err).Msgf("移动文件失败: %s", f.Path)
			result.Errors = append(result.Errors, err)
			continue
		}
		logger.Get().Info().Msgf("已移动: %s -> %s", f.Path, final)
		result.Moved++
	}

	logger.Get().Info().Msgf("提取完成: 移动 %d 个文件，失败 %d 个", result.Moved, len(result.Errors))
	return result, nil
}
