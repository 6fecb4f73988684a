package placeholder

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/maksimkurb/apimanctl/src/internal/utils"
)

// ParseProperties parses key=value entries. Later entries override earlier ones.
func ParseProperties(entries []string) (map[string]string, error) {
	props := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", entry)
		}
		props[key] = value
	}
	return props, nil
}

// LoadPropertiesFile reads key=value lines from path. Blank lines and lines
// starting with '#' are ignored.
func LoadPropertiesFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file: %w", err)
	}
	defer utils.CloseOrWarn(f, path)

	props := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%s:%d: invalid property line, expected key=value", path, lineNo)
		}
		props[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}
	return props, nil
}
