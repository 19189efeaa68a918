package hasher

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// ChunkSize 每次读取的字节数
const ChunkSize = 8192

type Algorithm string

const (
	XXHash Algorithm = "xxhash"
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// ParseAlgorithm 解析算法名称，未知名称返回 SHA256 且 ok 为 false
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case XXHash:
		return XXHash, true
	case MD5:
		return MD5, true
	case SHA256:
		return SHA256, true
	default:
		return SHA256, false
	}
}

func (a Algorithm) new() hash.Hash {
	switch a {
	case XXHash:
		return xxhash.New()
	case MD5:
		return md5.New()
	default:
		return sha256.New()
	}
}

// Result 单个文件的哈希结果：摘要、跳过或错误三者之一
type Result struct {
	File    internal.FileHandle
	Digest  string
	Skipped bool
	Reason  string
	Err     error
}

func (r Result) OK() bool {
	return r.Err == nil && !r.Skipped
}

// Hasher 无共享可变状态，可在任意数量的 goroutine 中并发使用
type Hasher struct {
	fs        afero.Fs
	algorithm Algorithm
	skipSize  int64
}

// New 创建哈希器；skipSize 大于 0 时跳过超过该大小的文件
func New(fs afero.Fs, algorithm string, skipSize int64) *Hasher {
	algo, ok := ParseAlgorithm(algorithm)
	if !ok {
		logger.Get().Info().
			Str("requested", algorithm).
			Str("algorithm", string(algo)).
			Msg("不支持的哈希算法，回退到默认算法")
	}

	return &Hasher{
		fs:        fs,
		algorithm: algo,
		skipSize:  skipSize,
	}
}

func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash 计算单个文件的摘要
func (h *Hasher) Hash(file internal.FileHandle) Result {
	result := Result{File: file}

	info, err := h.fs.Stat(file.Path)
	if err != nil {
		result.Err = &internal.HashError{Path: file.Path, Err: err}
		return result
	}

	if h.skipSize > 0 && info.Size() > h.skipSize {
		result.Skipped = true
		result.Reason = "too large"
		logger.Get().Debug().
			Str("file", file.Path).
			Int64("size", info.Size()).
			Int64("limit", h.skipSize).
			Msg("文件过大，跳过哈希")
		return result
	}

	digest, err := h.digest(file.Path)
	if err != nil {
		result.Err = &internal.HashError{Path: file.Path, Err: err}
		return result
	}

	result.Digest = digest
	return result
}

func (h *Hasher) digest(path string) (string, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum := h.algorithm.new()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(sum, onlyReader{f}, buf); err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// onlyReader 隐藏 WriterTo，保证 CopyBuffer 按 ChunkSize 分块读取
type onlyReader struct {
	io.Reader
}
