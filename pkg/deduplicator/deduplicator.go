package deduplicator

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/hasher"
)

// UnknownKey 没有摘要的文件使用的哈希组键
const UnknownKey = "unknown"

// 同名副本之间修改时间差小于该值视为相同
const modTimeTolerance = time.Millisecond

var variantPattern = regexp.MustCompile(`^(.*) \((\d+)\)(\..*)?$`)

// Verdict 单个文件的判定结果
type Verdict int

const (
	// Unique 目标树中没有相同内容，进入 Categorised
	Unique Verdict = iota
	// Known 目标树中已有相同内容，进入 To Be Deleted
	Known
	// NameKeeper 同名副本组中保留的原文件，进入 Categorised
	NameKeeper
	// NameVariant 带 " (n)" 后缀的副本，进入 Duplicates 或 To Be Deleted
	NameVariant
)

func (v Verdict) String() string {
	switch v {
	case Unique:
		return "unique"
	case Known:
		return "known"
	case NameKeeper:
		return "name-keeper"
	case NameVariant:
		return "name-variant"
	default:
		return "verdict(" + strconv.Itoa(int(v)) + ")"
	}
}

// Duplicate 判定是否计为重复
func (v Verdict) Duplicate() bool {
	return v == Known || v == NameVariant
}

type Decision struct {
	File    internal.FileHandle
	Verdict Verdict
	Key     string
}

// NameGroup 一个原文件和它的编号副本
type NameGroup struct {
	Keeper   internal.FileHandle
	Variants []internal.FileHandle
}

// SplitVariant 拆分 "stem (n).ext" 形式的文件名
func SplitVariant(name string) (stem string, n int, ext string, ok bool) {
	m := variantPattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", false
	}
	return m[1], n, m[3], true
}

// FindNamePairs 在同一批次、同一目录中寻找大小一致的编号副本
func FindNamePairs(batch []internal.FileHandle) []NameGroup {
	byPath := make(map[string]internal.FileHandle, len(batch))
	for _, f := range batch {
		byPath[f.Path] = f
	}

	groups := make(map[string]*NameGroup)
	for _, f := range batch {
		stem, _, ext, ok := SplitVariant(filepath.Base(f.Path))
		if !ok {
			continue
		}
		primary, found := byPath[filepath.Join(filepath.Dir(f.Path), stem+ext)]
		if !found || primary.Size != f.Size {
			continue
		}

		g, exists := groups[primary.Path]
		if !exists {
			g = &NameGroup{Keeper: primary}
			groups[primary.Path] = g
		}
		g.Variants = append(g.Variants, f)
	}

	result := make([]NameGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Variants, func(i, j int) bool {
			return g.Variants[i].Path < g.Variants[j].Path
		})
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Keeper.Path < result[j].Keeper.Path
	})
	return result
}

// Detector 一次处理过程中的重复判定状态
type Detector struct {
	digests map[string]string
	dest    hasher.Index
	groups  map[string]*NameGroup
	handled map[string]bool
	placed  map[string]bool
}

// NewDetector digests 为源文件摘要，dest 为处理开始前构建的目标树索引
func NewDetector(batch []internal.FileHandle, digests map[string]string, dest hasher.Index) *Detector {
	d := &Detector{
		digests: digests,
		dest:    dest,
		groups:  make(map[string]*NameGroup),
		handled: make(map[string]bool),
		placed:  make(map[string]bool),
	}
	if d.digests == nil {
		d.digests = make(map[string]string)
	}
	if d.dest == nil {
		d.dest = make(hasher.Index)
	}

	for _, g := range FindNamePairs(batch) {
		g := g
		d.groups[g.Keeper.Path] = &g
		for _, v := range g.Variants {
			d.groups[v.Path] = &g
		}
	}
	return d
}

// Key 返回文件的哈希组键
func (d *Detector) Key(file internal.FileHandle) string {
	if digest, ok := d.digests[file.Path]; ok {
		return digest
	}
	return UnknownKey
}

// Resolve 判定一个文件；命中同名副本组时一次返回整组，已处理过的文件返回 nil
func (d *Detector) Resolve(file internal.FileHandle) []Decision {
	if d.handled[file.Path] {
		return nil
	}

	if g, ok := d.groups[file.Path]; ok {
		var decisions []Decision
		if !d.handled[g.Keeper.Path] {
			d.handled[g.Keeper.Path] = true
			decisions = append(decisions, Decision{File: g.Keeper, Verdict: NameKeeper, Key: d.Key(g.Keeper)})
		}
		for _, v := range g.Variants {
			if d.handled[v.Path] {
				continue
			}
			d.handled[v.Path] = true
			decisions = append(decisions, Decision{File: v, Verdict: NameVariant, Key: d.Key(v)})
		}
		return decisions
	}

	d.handled[file.Path] = true
	verdict := Unique
	if digest, ok := d.digests[file.Path]; ok && d.dest.Contains(digest) {
		verdict = Known
	}
	return []Decision{{File: file, Verdict: verdict, Key: d.Key(file)}}
}

// Placed 该哈希组是否已有文件放入 Duplicates
func (d *Detector) Placed(key string) bool {
	return d.placed[key]
}

// MarkPlaced 在副本成功移入 Duplicates 后调用
func (d *Detector) MarkPlaced(key string) {
	d.placed[key] = true
}

// SelectBest 选出修改时间最新的文件，时间相同时取较大者
func SelectBest(files []internal.FileHandle) (internal.FileHandle, []internal.FileHandle) {
	if len(files) == 0 {
		return internal.FileHandle{}, nil
	}

	best := 0
	for i := 1; i < len(files); i++ {
		if better(files[i], files[best]) {
			best = i
		}
	}

	rest := make([]internal.FileHandle, 0, len(files)-1)
	rest = append(rest, files[:best]...)
	rest = append(rest, files[best+1:]...)
	return files[best], rest
}

func better(a, b internal.FileHandle) bool {
	diff := a.ModTime.Sub(b.ModTime)
	if diff < 0 {
		diff = -diff
	}
	if diff < modTimeTolerance {
		return a.Size > b.Size
	}
	return a.ModTime.After(b.ModTime)
}
