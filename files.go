package cafplot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ListInputs expands the given paths into a list of files. Directories are
// replaced by the regular files they hold, sorted by name. At most max
// files are returned when max > 0.
func ListInputs(paths []string, max int) ([]string, error) {
	var files []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("could not stat input %q: %w", path, err)
		}
		if !fi.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("could not list input directory %q: %w", path, err)
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(path, name))
		}
	}

	if max > 0 && len(files) > max {
		files = files[:max]
	}
	return files, nil
}
