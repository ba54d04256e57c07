// importer 将抓取器输出的教室课表 CSV 导入数据库。
//
// 用法:
//
//	importer -dir ./output/PRIME_building
//	importer "프라임관 - 101대강의실.csv" "프라임관 - 102.csv"
//
// 每个文件名形如 "<建筑> - <教室>.csv"；同一教室重复导入时整体替换其课表。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/database"
	applogger "smart-campus/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 ./config/config.yaml）")
	dir := flag.String("dir", "", "批量导入该目录下的全部 .csv 文件")
	flag.Parse()

	files, err := collectFiles(*dir, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "用法: importer [-config path] [-dir dir] [file.csv ...]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	importSvc := service.NewImportService(repository.NewRepository(db), logger)
	ctx := context.Background()

	failed := 0
	for _, path := range files {
		if err := importFile(ctx, importSvc, path); err != nil {
			// 单个文件失败不影响其余文件
			logger.Error("导入失败", zap.String("file", path), zap.Error(err))
			failed++
		}
	}

	logger.Info("导入结束", zap.Int("total", len(files)), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, svc service.ImportService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = svc.ImportRoomCSV(ctx, filepath.Base(path), f)
	return err
}

// collectFiles 合并 -dir 目录下的 .csv 与命令行参数中的文件，按路径排序
func collectFiles(dir string, args []string) ([]string, error) {
	files := append([]string(nil), args...)
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("读取目录 %s 失败: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
