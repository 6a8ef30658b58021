package mutation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// applyEdit carries out one EditFile action using its declared
// strategy. The file is rewritten atomically (write-temp-then-rename)
// so a crash mid-edit never leaves a half-written config behind.
func applyEdit(a ChangeAction) error {
	if IsProtectedConfigPath(a.Path) {
		return fmt.Errorf("mutation: %s is a protected config path and may never be edited", a.Path)
	}

	existing, err := os.ReadFile(a.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("mutation: read %s: %w", a.Path, err)
		}
		if !a.CreateIfMissing {
			return fmt.Errorf("mutation: %s does not exist and CreateIfMissing is false", a.Path)
		}
		existing = nil
	}

	var next string
	switch a.Strategy {
	case AppendIfMissing:
		next = appendIfMissing(string(existing), a.Lines)
	case ReplaceSection:
		next = replaceSection(string(existing), a.StartMarker, a.EndMarker, a.Body)
	case ReplaceEntire:
		next = a.Body
	default:
		return fmt.Errorf("mutation: unknown edit strategy %d", a.Strategy)
	}

	if next == string(existing) {
		return nil
	}

	dir := filepath.Dir(a.Path)
	tmp, err := os.CreateTemp(dir, ".anna-edit-*")
	if err != nil {
		return fmt.Errorf("mutation: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(next); err != nil {
		tmp.Close()
		return fmt.Errorf("mutation: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mutation: close temp file: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(a.Path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("mutation: chmod temp file: %w", err)
	}

	return os.Rename(tmpPath, a.Path)
}

func appendIfMissing(content string, lines []string) string {
	for _, line := range lines {
		if strings.Contains(content, line) {
			continue
		}
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += line + "\n"
	}
	return content
}

func replaceSection(content, start, end, body string) string {
	block := start + "\n" + body + "\n" + end
	startIdx := strings.Index(content, start)
	if startIdx == -1 {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + block + "\n"
	}
	endIdx := strings.Index(content[startIdx:], end)
	if endIdx == -1 {
		return content[:startIdx] + block
	}
	endIdx += startIdx + len(end)
	return content[:startIdx] + block + content[endIdx:]
}
