package pool

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// LoadSource parses a line-delimited resource list. Blank lines and lines
// starting with '#' are skipped; unparseable lines are dropped individually
// so one bad entry never poisons the whole list.
func LoadSource(path string) ([]domain.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resource source: %w", err)
	}
	defer f.Close()

	var resources []domain.Resource
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		res, err := domain.ParseResource(line)
		if err != nil {
			continue
		}
		if seen[res.Key()] {
			continue
		}
		seen[res.Key()] = true
		resources = append(resources, res)
	}

	if err := scanner.Err(); err != nil {
		return resources, fmt.Errorf("read resource source: %w", err)
	}
	return resources, nil
}
