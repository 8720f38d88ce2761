// Package scanner expands command-line paths into statement files.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-import/internal/detector"
	"fjacquet/statement-import/internal/logging"
)

// ReportSuffix marks outcome reports written next to statements. They are
// never picked up as input.
const ReportSuffix = ".report.csv"

// StatementScanner finds statement files under files and directories.
type StatementScanner struct {
	logger logging.Logger
}

// NewStatementScanner creates a scanner logging through logger.
func NewStatementScanner(logger logging.Logger) *StatementScanner {
	return &StatementScanner{
		logger: logging.OrDefault(logger).WithField("component", "StatementScanner"),
	}
}

// ScanPaths returns the statements named by paths, in argument order.
// A file argument is returned as is, whatever its extension, so content
// detection can still claim it. A directory is walked recursively and
// contributes only files with a statement extension, in lexical order.
func (s *StatementScanner) ScanPaths(paths []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			s.logger.WithError(err).WithField(logging.FieldFile, p).Error("Failed to stat path")
			return nil, fmt.Errorf("failed to stat path %s: %w", p, err)
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		dirFiles, err := s.scanDirectory(p)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}

	return files, nil
}

func (s *StatementScanner) scanDirectory(dirPath string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.WithError(err).WithField(logging.FieldFile, path).Warn("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(strings.ToLower(name), ReportSuffix) || !detector.HasStatementExtension(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	s.logger.Debug("Scanned directory",
		logging.F(logging.FieldFile, dirPath),
		logging.F(logging.FieldCount, len(files)))
	return files, nil
}
