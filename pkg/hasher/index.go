package hasher

import (
	"context"
	"time"

	"github.com/moyu-x/file-organiser/internal"
)

// Index 摘要到文件列表的映射，同一摘要下的顺序没有意义
type Index map[string][]internal.FileHandle

func (idx Index) Add(digest string, file internal.FileHandle) {
	idx[digest] = append(idx[digest], file)
}

func (idx Index) Contains(digest string) bool {
	_, ok := idx[digest]
	return ok
}

func (idx Index) Lookup(digest string) []internal.FileHandle {
	return idx[digest]
}

// Files 返回索引中的文件总数
func (idx Index) Files() int {
	n := 0
	for _, files := range idx {
		n += len(files)
	}
	return n
}

// Catalog 一次完整遍历的哈希结果
type Catalog struct {
	Index   Index
	Digests map[string]string // 路径 -> 摘要
	Skipped map[string]bool
	Failed  []Result
}

func newCatalog() *Catalog {
	return &Catalog{
		Index:   make(Index),
		Digests: make(map[string]string),
		Skipped: make(map[string]bool),
	}
}

// Digest 返回文件摘要，没有摘要时 ok 为 false
func (c *Catalog) Digest(path string) (string, bool) {
	d, ok := c.Digests[path]
	return d, ok
}

// Progress 哈希进度回调
type Progress func(processed, total int, etaSeconds float64)

// BuildCatalog 并发计算所有文件的哈希，并在单个 goroutine 中汇总
func (p *HashPool) BuildCatalog(ctx context.Context, files []internal.FileHandle, onProgress Progress) (*Catalog, error) {
	catalog := newCatalog()
	eta := NewEstimator(len(files))

	err := p.Run(ctx, files, func(r Result) {
		switch {
		case r.Err != nil:
			catalog.Failed = append(catalog.Failed, r)
		case r.Skipped:
			catalog.Skipped[r.File.Path] = true
		default:
			catalog.Index.Add(r.Digest, r.File)
			catalog.Digests[r.File.Path] = r.Digest
		}

		processed, remaining := eta.Tick()
		if onProgress != nil {
			onProgress(processed, len(files), remaining)
		}
	})

	return catalog, err
}

// Estimator 根据已处理数量和耗时估算剩余秒数
type Estimator struct {
	total     int
	processed int
	start     time.Time
	now       func() time.Time
}

func NewEstimator(total int) *Estimator {
	return &Estimator{total: total, start: time.Now(), now: time.Now}
}

// Tick 记录一个完成的任务，返回已处理数和预计剩余秒数
func (e *Estimator) Tick() (int, float64) {
	e.processed++
	if e.processed >= e.total {
		return e.processed, 0
	}

	elapsed := e.now().Sub(e.start).Seconds()
	perItem := elapsed / float64(e.processed)
	return e.processed, perItem * float64(e.total-e.processed)
}
