// Package scanner walks a screenshots directory tree and finds importable
// images, deriving account metadata from the directory layout.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner walks a directory tree and finds screenshot files.
// Path structure: {root}/{account}/shot.png; screenshots directly under the
// root have no account scope.
type Scanner struct {
	rootDir string
}

// New creates a scanner for the given root directory.
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// Result is a found screenshot with the account name derived from its parent
// directory, empty when the file sits directly under the root.
type Result struct {
	Path        string
	AccountName string
}

// Scan walks the directory tree and returns all screenshot files.
func (s *Scanner) Scan() ([]Result, error) {
	rootDir := s.expandHome(s.rootDir)

	var results []Result
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !isScreenshot(path) {
			return nil
		}

		results = append(results, Result{
			Path:        path,
			AccountName: accountFromPath(path, rootDir),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return results, nil
}

// isScreenshot checks the file extension against known image formats.
func isScreenshot(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".heic":
		return true
	}
	return false
}

// accountFromPath extracts the account directory name, normalized to a
// readable form: "everyday_checking" -> "Everyday Checking".
func accountFromPath(filePath, rootDir string) string {
	relPath, err := filepath.Rel(rootDir, filePath)
	if err != nil {
		relPath = filePath
	}

	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) < 2 {
		return ""
	}

	name := strings.ReplaceAll(parts[0], "_", " ")
	words := strings.Split(name, " ")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// expandHome expands ~ to the home directory.
func (s *Scanner) expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
