package corpus

import "path/filepath"

// Resolve returns p unchanged when it is absolute or baseDir is empty, and
// p joined onto baseDir otherwise.
func Resolve(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(baseDir, p)
}
