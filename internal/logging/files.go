package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupTimeFormat is the timestamp lumberjack puts in backup names.
const backupTimeFormat = "2006-01-02T15-04-05.000"

// Backups returns the rotated backups of the log at path, oldest first.
func Backups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "-"

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list log directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if _, err := time.Parse(backupTimeFormat, stamp); err != nil {
			continue
		}
		backups = append(backups, filepath.Join(dir, name))
	}
	sort.Strings(backups)
	return backups, nil
}

// Tail returns up to n of the last lines of the log at path, oldest
// first. Backups are consulted when the current file is short. A missing
// log yields no lines.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	backups, err := Backups(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, p := range append(backups, path) {
		fileLines, err := readLines(p)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return lines, nil
}

// Size reports the byte size of the current log and the total of its
// backups. Missing files count as zero.
func Size(path string) (current, rotated int64, err error) {
	if current, err = fileSize(path); err != nil {
		return 0, 0, err
	}
	backups, err := Backups(path)
	if err != nil {
		return 0, 0, err
	}
	for _, backup := range backups {
		size, err := fileSize(backup)
		if err != nil {
			return 0, 0, err
		}
		rotated += size
	}
	return current, rotated, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat log file: %w", err)
	}
	return info.Size(), nil
}

// Clear empties the current log and removes its backups. The current file
// is truncated rather than removed so a running daemon keeps writing to it.
func Clear(path string) error {
	if err := os.Truncate(path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear log file: %w", err)
	}
	backups, err := Backups(path)
	if err != nil {
		return err
	}
	for _, backup := range backups {
		if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove rotated log: %w", err)
		}
	}
	return nil
}
