//go:build windows

package sweeper

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

func isHidden(path string, info os.FileInfo) bool {
	if strings.HasPrefix(info.Name(), ".") {
		return true
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&(windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM) != 0
}
