package internal

import (
	"path/filepath"
	"strings"
)

// CategorisedDir 返回整理后文件的根目录
func CategorisedDir(root string) string {
	return filepath.Join(root, CategorisedDirName)
}

// DuplicatesDir 返回按文件名检测出的重复文件目录
func DuplicatesDir(root string) string {
	return filepath.Join(root, DuplicatesDirName)
}

// ToBeDeletedDir 返回待删除目录
func ToBeDeletedDir(root string) string {
	return filepath.Join(root, ToBeDeletedDirName)
}

// EmptyFoldersDir 返回空文件夹的存放目录
func EmptyFoldersDir(root string) string {
	return filepath.Join(ToBeDeletedDir(root), EmptyFoldersDirName)
}

// Overlaps 两个目录相同或互相包含
func Overlaps(a, b string) bool {
	return contains(a, b) || contains(b, a)
}

func contains(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
