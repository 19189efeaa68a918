package internal

const (
	// 操作日志数据库默认路径
	DefaultJournalPath = "~/.file-organiser/journal.db"

	// 缓冲区大小
	DefaultBufferSize = 1000

	// 哈希工作线程数，0 表示使用 CPU 核数
	DefaultWorkers = 0

	// 默认哈希算法
	DefaultAlgorithm = "sha256"
)

// 目标根目录下的固定布局
const (
	CategorisedDirName  = "Categorised"
	DuplicatesDirName   = "Duplicates"
	ToBeDeletedDirName  = "To Be Deleted"
	EmptyFoldersDirName = "empty folders"
)
