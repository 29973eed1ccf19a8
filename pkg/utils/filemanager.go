// =============================================================================
// Purchase Order Exporter - File Manager Utility
// =============================================================================
//
// This module provides the file-system side of the batch converter:
//   - Spreadsheet discovery in the input directory
//   - Writing export files to the output directory
//   - Input archival (moving processed spreadsheets)
//   - Error log generation
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - Spreadsheets are moved to input_archive after their export is written,
//     only when archiving is enabled
//   - Failed spreadsheets remain in their original location
//   - Error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// InputExtension is the extension of the spreadsheets picked up by
// DiscoverInputFiles, compared case-insensitively.
const InputExtension = ".xlsx"

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory where spreadsheets are placed.
	InputDir string

	// OutputDir is the directory where export files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived spreadsheets.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2026/10/14/pedido.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether ArchiveInputFile moves anything.
	ArchiveOnSuccess bool

	// Overwrite lets WriteOutput replace an existing export. When false a
	// short random suffix is added to the name instead.
	Overwrite bool

	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
// Archiving is off until ArchiveOnSuccess is set.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		now:             time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory and, when archiving is on,
// the archive directory. The input directory is never created.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the spreadsheets directly inside InputDir.
//
// RETURNS:
//   - The matching file paths, sorted by name. Directories and Excel lock
//     files ("~$pedido.xlsx") are skipped.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSpreadsheet(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(fm.InputDir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// IsSpreadsheet reports whether name looks like an input workbook.
func IsSpreadsheet(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), InputExtension)
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// WriteOutput writes an export file into OutputDir.
//
// PARAMETERS:
//   - fileName: The export file name; only its base is used.
//   - data: The file contents.
//
// RETURNS:
//   - The path written.
//   - An error if writing fails. A partially written file is removed.
func (fm *FileManager) WriteOutput(fileName string, data []byte) (string, error) {
	path := filepath.Join(fm.OutputDir, filepath.Base(fileName))
	if !fm.Overwrite && FileExists(path) {
		path = uniquePath(path)
	}

	tmp, err := os.CreateTemp(fm.OutputDir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move output file into place: %w", err)
	}

	return path, nil
}

// uniquePath adds the first block of a random UUID before the extension:
// pedido.csv -> pedido_1b4e28ba.csv
func uniquePath(path string) string {
	ext := filepath.Ext(path)
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed spreadsheet to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file, or filePath itself when archiving is off.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)

	archiveDir := filepath.Dir(archivePath)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if FileExists(archivePath) {
		archivePath = uniquePath(archivePath)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.clock()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.InputArchiveDir, fileName)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed spreadsheet.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string

	// RowNumber, FieldName and FieldValue are set for cell-level failures.
	RowNumber  int
	FieldName  string
	FieldValue string
}

// WriteErrorLog writes error entries to a timestamped log file in OutputDir.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.clock()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	if err := writeErrorLog(file, entries, now); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}

	return logPath, nil
}

func writeErrorLog(w io.Writer, entries []ErrorLogEntry, generated time.Time) error {
	writer := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(writer, "Purchase Order Exporter - Error Log\nGenerated: %s\nTotal Errors: %d\n%s\n\n",
		generated.Format("2006-01-02 15:04:05"), len(entries), rule)

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n", i+1)
		fmt.Fprintf(writer, "  Timestamp:      %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(writer, "  File:           %s\n", entry.FileName)
		fmt.Fprintf(writer, "  Error Type:     %s\n", entry.ErrorType)
		fmt.Fprintf(writer, "  Message:        %s\n", entry.ErrorMessage)
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	fmt.Fprintf(writer, "%s\nEnd of Error Log\n", rule)
	return writer.Flush()
}

// =============================================================================
// FILE UTILITIES
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
