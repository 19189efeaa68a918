package hasher

import (
	"context"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// HashPool 有界的哈希工作池，结果无序
type HashPool struct {
	hasher  *Hasher
	workers int
	pool    *ants.Pool
}

// NewHashPool 创建工作池，workers 小于等于 0 时使用 CPU 核数
func NewHashPool(h *Hasher, workers int) (*HashPool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		logger.Get().Error().Err(err).Msg("创建 goroutine 池失败")
		return nil, err
	}

	logger.Get().Debug().Msgf("创建哈希计算池，工作线程数: %d", workers)
	return &HashPool{
		hasher:  h,
		workers: workers,
		pool:    pool,
	}, nil
}

func (p *HashPool) Workers() int {
	return p.workers
}

// Run 将文件分发给工作池，并在调用方 goroutine 中逐个交付结果
//
// 每次分发前检查 ctx；取消后不再分发，已在运行的任务完成后返回 ctx.Err()。
func (p *HashPool) Run(ctx context.Context, files []internal.FileHandle, onResult func(Result)) error {
	results := make(chan Result, internal.DefaultBufferSize)

	go func() {
		var wg sync.WaitGroup
		defer close(results)

		for _, file := range files {
			file := file
			if ctx.Err() != nil {
				break
			}

			wg.Add(1)
			err := p.pool.Submit(func() {
				defer wg.Done()
				results <- p.hasher.Hash(file)
			})
			if err != nil {
				wg.Done()
				results <- Result{File: file, Err: &internal.HashError{Path: file.Path, Err: err}}
			}
		}

		wg.Wait()
	}()

	for result := range results {
		onResult(result)
	}

	return ctx.Err()
}

func (p *HashPool) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
