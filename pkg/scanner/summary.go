package scanner

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// Summary 目录统计：文件数、子目录数、总字节数
type Summary struct {
	Files   int
	Folders int
	Bytes   int64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d 个文件, %d 个文件夹, %s", s.Files, s.Folders, humanize.IBytes(uint64(s.Bytes)))
}

// Add 合并两个统计结果
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Files:   s.Files + o.Files,
		Folders: s.Folders + o.Folders,
		Bytes:   s.Bytes + o.Bytes,
	}
}

// Summarize 统计目录，不存在的目录返回零值；根目录本身不计入文件夹数
func Summarize(fs afero.Fs, dir string) Summary {
	var s Summary
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return s
	}

	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != dir {
				s.Folders++
			}
			return nil
		}
		s.Files++
		s.Bytes += info.Size()
		return nil
	})

	return s
}

// SummarizeAll 汇总多个目录
func SummarizeAll(fs afero.Fs, dirs []string) Summary {
	var total Summary
	for _, dir := range dirs {
		total = total.Add(Summarize(fs, dir))
	}
	return total
}
