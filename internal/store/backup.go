package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const backupTimestampLayout = "20060102_150405"

// Backup duplicates the current data files into data/backups with a
// timestamp suffix. A missing source file is skipped, not an error. Returns
// the backup files created.
func (s *CSVStore) Backup() ([]string, error) {
	backupDir := filepath.Join(s.DataDir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	stamp := time.Now().Format(backupTimestampLayout)
	var created []string
	for _, src := range []string{s.LivePath(), s.HistoryPath()} {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(src), ".csv")
		dst := filepath.Join(backupDir, fmt.Sprintf("%s_%s.csv", base, stamp))
		if err := copyFile(src, dst); err != nil {
			return created, fmt.Errorf("backup %s: %w", src, err)
		}
		s.Logger.Info("backed up data file", zap.String("from", src), zap.String("to", dst))
		created = append(created, dst)
	}
	return created, nil
}

// Summary reports what is currently on disk.
type Summary struct {
	LiveVanillaTrades int  `json:"live_vanilla_trades"`
	LiveExoticTrades  int  `json:"live_exotic_trades"`
	TotalLiveTrades   int  `json:"total_live_trades"`
	TradeHistoryCount int  `json:"trade_history_count"`
	LiveFileExists    bool `json:"live_file_exists"`
	HistoryFileExists bool `json:"history_file_exists"`
}

func (s *CSVStore) Summary() Summary {
	vanilla, exotic := s.LoadLive()
	history := s.LoadHistory()
	return Summary{
		LiveVanillaTrades: len(vanilla),
		LiveExoticTrades:  len(exotic),
		TotalLiveTrades:   len(vanilla) + len(exotic),
		TradeHistoryCount: len(history),
		LiveFileExists:    fileExists(s.LivePath()),
		HistoryFileExists: fileExists(s.HistoryPath()),
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
