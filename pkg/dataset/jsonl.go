package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LoadJSONL reads one split from a JSONL file: one Example object per line,
// blank lines skipped.
func LoadJSONL(fs afero.Fs, path string) (Split, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var split Split
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var ex Example
		if err := json.Unmarshal([]byte(text), &ex); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, line, err)
		}
		split = append(split, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset file %s line %d: %w", path, line+1, err)
	}

	return split, nil
}

// LoadDir loads a dataset from a directory of <split>.jsonl files, one per
// split name given.
func LoadDir(fs afero.Fs, dir, name, typ string, splitNames []string) (*Dataset, error) {
	d := &Dataset{
		Name:   name,
		Type:   typ,
		Splits: make(map[string]Split, len(splitNames)),
	}

	for _, splitName := range splitNames {
		split, err := LoadJSONL(fs, filepath.Join(dir, splitName+".jsonl"))
		if err != nil {
			return nil, err
		}
		d.Splits[splitName] = split
	}

	return d, nil
}
