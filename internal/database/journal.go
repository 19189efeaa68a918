package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// Entry 一次移动、删除或失败
type Entry struct {
	ID          int64  `gorm:"primaryKey"`
	RunID       string `gorm:"index;not null"`
	Action      string `gorm:"index;not null"`
	Source      string `gorm:"not null"`
	Destination string
	Digest      string
	Error       string
	CreatedAt   time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "journal_entries"
}

// Run 一次运行的汇总
type Run struct {
	ID            int64  `gorm:"primaryKey"`
	RunID         string `gorm:"uniqueIndex;not null"`
	Kind          string `gorm:"not null"`
	Status        string `gorm:"not null"`
	Duplicates    int
	NonDuplicates int
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (Run) TableName() string {
	return "runs"
}

// Journal 基于 SQLite 的操作日志
type Journal struct {
	db *gorm.DB
	mu sync.Mutex
}

var _ internal.Journal = (*Journal)(nil)

func Open(dbPath string) (*Journal, error) {
	expandedPath, err := ExpandPath(dbPath)
	if err != nil {
		logger.Get().Error().Err(err).Msg("扩展数据库路径失败")
		return nil, err
	}

	logger.Get().Info().Msgf("打开操作日志，路径: %s", expandedPath)

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0755); err != nil {
		logger.Get().Error().Err(err).Msgf("创建数据库目录失败: %s", filepath.Dir(expandedPath))
		return nil, err
	}

	dsn := expandedPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(&sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("打开数据库连接失败")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Get().Error().Err(err).Msg("获取数据库连接失败")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&Entry{}, &Run{}); err != nil {
		logger.Get().Error().Err(err).Msg("创建数据库表失败")
		sqlDB.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// ExpandPath 展开开头的 ~
func ExpandPath(path string) (string, error) {
	if path == "~" || (len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == '\\')) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func (j *Journal) Record(e internal.JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.db.Create(&Entry{
		RunID:       e.RunID,
		Action:      e.Action,
		Source:      e.Source,
		Destination: e.Destination,
		Digest:      e.Digest,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("写入操作记录失败: %w", err)
	}
	return nil
}

func (j *Journal) RecordRun(r internal.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	run := Run{
		RunID:         r.RunID,
		Kind:          r.Kind,
		Status:        string(r.Status),
		Duplicates:    r.Duplicates,
		NonDuplicates: r.NonDuplicates,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}
	err := j.db.Create(&run).Error
	if err != nil {
		return fmt.Errorf("写入运行记录失败: %w", err)
	}
	return nil
}

// Entries 按写入顺序返回某次运行的全部记录
func (j *Journal) Entries(runID string) ([]internal.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var rows []Entry
	if err := j.db.Where("run_id = ?", runID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询操作记录失败: %w", err)
	}

	entries := make([]internal.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, internal.JournalEntry{
			RunID:       row.RunID,
			Action:      row.Action,
			Source:      row.Source,
			Destination: row.Destination,
			Digest:      row.Digest,
			Error:       row.Error,
			CreatedAt:   row.CreatedAt,
		})
	}
	return entries, nil
}

// Runs 返回最近的运行记录，limit 小于等于 0 时返回全部
func (j *Journal) Runs(limit int) ([]internal.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query := j.db.Order("started_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []Run
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}

	runs := make([]internal.RunRecord, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, internal.RunRecord{
			RunID:         row.RunID,
			Kind:          row.Kind,
			Status:        internal.RunStatus(row.Status),
			Duplicates:    row.Duplicates,
			NonDuplicates: row.NonDuplicates,
			StartedAt:     row.StartedAt,
			FinishedAt:    row.FinishedAt,
		})
	}
	return runs, nil
}

// CountByAction 统计某次运行中各动作的数量
func (j *Journal) CountByAction(runID string) (map[string]int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var rows []struct {
		Action string
		Count  int64
	}
	err := j.db.Model(&Entry{}).
		Select("action, count(*) as count").
		Where("run_id = ?", runID).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计操作记录失败: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
