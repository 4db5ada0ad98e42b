package utils

import "path/filepath"

// ResolvePaths rewrites each path in place so that relative entries point
// below baseDir. Absolute paths and nil pointers are left alone.
func ResolvePaths(baseDir string, paths ...*string) {
	for _, p := range paths {
		if p == nil || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(baseDir, *p)
	}
}
