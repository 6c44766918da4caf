// Package savepath prepares output locations for saved figures.
package savepath

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Create makes every missing directory on the way to the file at path, one
// level at a time, and returns the absolute path of the file.
func Create(
	path string,
	logger *log.Logger,
) (
	string, error,
) {

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir, file := filepath.Split(abs)
	if file == "" {
		return "", fmt.Errorf("savepath: %q names a directory", path)
	}

	// Make each folder if it doesn't already exist
	for _, d := range parents(filepath.Clean(dir)) {
		st, err := os.Stat(d)
		if os.IsNotExist(err) {
			if err := os.Mkdir(d, 0755); err != nil && !os.IsExist(err) {
				return "", err
			}
			continue
		}
		if err != nil {
			return "", err
		}
		if !st.IsDir() {
			return "", fmt.Errorf("savepath: %s is not a directory", d)
		}
	}

	if logger != nil {
		logger.Printf("saving %s to folder %s", file, filepath.Clean(dir))
	}
	return abs, nil
}

// parents lists dir and all of its ancestors, outermost first.
func parents(dir string) []string {
	var out []string
	for {
		out = append(out, dir)
		up := filepath.Dir(dir)
		if up == dir {
			break
		}
		dir = up
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Dated returns the session folder for a run started at t:
// root/2006-Jan-02/15:04:05, with ": note" appended when note is set.
func Dated(
	root, note string,
	t time.Time,
) (
	string,
) {
	folder := t.Format("15:04:05")
	if note != "" {
		folder += ": " + note
	}
	return filepath.Join(root, t.Format("2006-Jan-02"), folder)
}

// Frame names the i-th frame of an animation inside dir.
func Frame(dir, name string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.png", name, i))
}

// WithExt returns path with its extension replaced by ext.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.TrimPrefix(ext, ".")
}
