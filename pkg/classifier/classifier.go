package classifier

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

const (
	// UnknownYear 无法读取修改时间时使用的年份目录
	UnknownYear = "UnknownYear"

	// HeaderSize 文件类型检测所需的文件头部大小（字节）
	HeaderSize = 261
)

// Nesting 决定类别目录下是否再按扩展名、年份分层
type Nesting int

const (
	ByYear Nesting = 1 << iota
	ByExtension
	Flat Nesting = 0
)

// Category 分类表中的一项
type Category struct {
	Path       []string
	Nesting    Nesting
	Extensions []string
}

var (
	noExtension = Category{Path: []string{"Other", "No Extension"}, Nesting: ByYear}
	premiere    = Category{Path: []string{"Media", "Video", "Adobe"}, Nesting: ByYear, Extensions: []string{".prproj"}}
	fallback    = Category{Path: []string{"Other", "Uncategorised"}, Nesting: ByYear}
)

// Categories 按匹配顺序排列；.prproj 在所有类别之前单独处理
var Categories = []Category{
	{[]string{"Documents", "Text Documents"}, ByExtension | ByYear, []string{".doc", ".docx", ".odt", ".rtf", ".wpd", ".txt", ".tex", ".md", ".wps", ".pages", ".epub"}},
	{[]string{"Documents", "Worksheets"}, ByExtension | ByYear, []string{".xls", ".xlsx", ".xlsm", ".ods", ".numbers", ".csv", ".tsv"}},
	{[]string{"Documents", "Presentations"}, ByYear, []string{".ppt", ".pptx", ".odp", ".key", ".pps", ".ppsx", ".pptm"}},
	{[]string{"Documents", "PDF Documents"}, ByYear, []string{".pdf"}},
	{[]string{"Documents", "Emails"}, ByYear, []string{".eml", ".msg", ".pst", ".mbox", ".ost"}},
	{[]string{"Media", "Video"}, ByYear, []string{".mp4", ".mov", ".avi", ".wmv", ".flv", ".mkv", ".mpeg", ".mpg", ".m4v", ".3gp", ".3g2", ".webm", ".ogv", ".amv", ".vob", ".rm", ".rmvb"}},
	{[]string{"Media", "Audio"}, ByYear, []string{".mp3", ".wav", ".wma", ".aac", ".ogg", ".flac", ".m4a", ".aiff", ".amr", ".alac", ".opus", ".mid", ".midi"}},
	{[]string{"Media", "Images"}, ByYear, []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".svg", ".webp", ".ico", ".heic", ".heif", ".raw", ".psd", ".eps", ".ai", ".xcf", ".indd", ".cr2"}},
	{[]string{"Media", "3D Files"}, ByExtension | ByYear, []string{".3ds", ".obj", ".fbx", ".blend", ".dae", ".stl", ".ply", ".max", ".skp", ".gltf", ".glb", ".igs", ".step"}},
	{[]string{"Programs", "Source Code Files"}, ByYear, []string{".c", ".cpp", ".h", ".hpp", ".cs", ".java", ".js", ".jsx", ".ts", ".tsx", ".py", ".rb", ".php", ".pl", ".swift", ".go", ".rs", ".sh", ".bash", ".sql", ".lua", ".m", ".scala", ".kt", ".dart", ".r"}},
	{[]string{"Programs", "Compiled and Executables"}, ByYear, []string{".exe", ".bat", ".msi", ".com", ".jar", ".class", ".dll", ".apk", ".bin", ".so", ".app", ".deb", ".rpm", ".ipa"}},
	{[]string{"Programs", "Web Files"}, ByYear, []string{".html", ".htm", ".css", ".scss", ".sass", ".less", ".xml", ".json", ".yaml", ".yml", ".toml"}},
	{[]string{"Compressed Files"}, ByYear, []string{".zip", ".rar", ".7z", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".lzma", ".iso", ".dmg", ".cab", ".z", ".arj"}},
	{[]string{"Other", "Fonts"}, ByExtension, []string{".ttf", ".otf", ".woff", ".woff2", ".eot", ".pfb", ".pfm", ".fon"}},
	{[]string{"Other", "Links and Shortcuts"}, Flat, []string{".lnk", ".url", ".webloc"}},
	{[]string{"Other", "Log Files"}, ByYear, []string{".log"}},
	{[]string{"Other", "SystemFiles"}, ByExtension, []string{".tmp", ".sys", ".bak", ".cache", ".dat", ".db", ".ini", ".cfg"}},
}

var byExtension = func() map[string]Category {
	m := make(map[string]Category)
	for _, c := range Categories {
		for _, ext := range c.Extensions {
			m[ext] = c
		}
	}
	return m
}()

// Lookup 返回扩展名所属类别，ext 需为小写并带点
func Lookup(ext string, hasExt bool) Category {
	if !hasExt {
		return noExtension
	}
	if ext == ".prproj" {
		return premiere
	}
	if c, ok := byExtension[ext]; ok {
		return c
	}
	return fallback
}

// Subpath 分类规则本身：纯函数，没有 I/O
func Subpath(ext string, hasExt bool, year string) string {
	c := Lookup(ext, hasExt)

	parts := append([]string{}, c.Path...)
	if c.Nesting&ByExtension != 0 {
		parts = append(parts, ext)
	}
	if c.Nesting&ByYear != 0 {
		parts = append(parts, year)
	}
	return filepath.Join(parts...)
}

// Extension 返回小写扩展名，以及文件是否有扩展名
//
// 开头的点不算扩展名分隔符，".bashrc" 没有扩展名，".config.yaml" 的扩展名是 ".yaml"。
func Extension(path string) (string, bool) {
	name := strings.TrimLeft(filepath.Base(path), ".")
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(name)))
	if ext == "" || ext == "." {
		return "", false
	}
	return ext, true
}

// Year 返回修改时间的年份，零值返回 UnknownYear
func Year(t time.Time) string {
	if t.IsZero() {
		return UnknownYear
	}
	return strconv.Itoa(t.Year())
}

// Router 计算文件在目标根目录下的最终路径
type Router struct {
	fs afero.Fs
	// SniffExtensionless 为 true 时，通过文件头推断无扩展名文件的类型
	SniffExtensionless bool
}

func NewRouter(fs afero.Fs) *Router {
	return &Router{fs: fs}
}

// Route 返回 base 下的目标文件路径，并确保目录存在；不移动任何文件
func (r *Router) Route(base string, file internal.FileHandle) (string, error) {
	ext, hasExt := Extension(file.Path)
	if !hasExt && r.SniffExtensionless {
		ext, hasExt = r.sniff(file.Path)
	}

	dir := filepath.Join(base, Subpath(ext, hasExt, r.year(file)))
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	return filepath.Join(dir, filepath.Base(file.Path)), nil
}

func (r *Router) year(file internal.FileHandle) string {
	if !file.ModTime.IsZero() {
		return Year(file.ModTime)
	}
	info, err := r.fs.Stat(file.Path)
	if err != nil {
		return UnknownYear
	}
	return Year(info.ModTime())
}

func (r *Router) sniff(path string) (string, bool) {
	head, err := r.readHeader(path)
	if err != nil {
		logger.Get().Debug().Err(err).Str("file", path).Msg("读取文件头部失败")
		return "", false
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", false
	}

	logger.Get().Debug().Str("file", path).Str("type", kind.Extension).Msg("根据文件头推断扩展名")
	return "." + kind.Extension, true
}

func (r *Router) readHeader(path string) ([]byte, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, HeaderSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// DetectMIME 返回文件头对应的 MIME 类型，无法识别时返回 "unknown"
func (r *Router) DetectMIME(path string) (string, error) {
	head, err := r.readHeader(path)
	if err != nil {
		return "", err
	}

	kind, err := filetype.Match(head)
	if err != nil {
		return "", err
	}
	if kind == filetype.Unknown {
		return "unknown", nil
	}
	return kind.MIME.Value, nil
}
