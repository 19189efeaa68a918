//go:build !windows

package sweeper

import (
	"os"
	"strings"
)

func isHidden(_ string, info os.FileInfo) bool {
	return strings.HasPrefix(info.Name(), ".")
}
