// Package export copies finished downloads to another folder.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cilicili/internal/model"
	"cilicili/internal/util"
	"cilicili/internal/util/format"
)

// File copies src into dir as newName (the source's base name when empty).
// An existing target is never overwritten: "<stem>_<n><ext>" is used instead.
// Returns the path written.
func File(src, dir, newName string) (string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return "", model.NewError(model.ErrFilesystem, "export", src, err)
	}
	if fi.IsDir() {
		return "", model.NewError(model.ErrFilesystem, "export", src, errors.New("is a directory"))
	}
	if err := util.EnsureDir(dir); err != nil {
		return "", model.NewError(model.ErrFilesystem, "create dir", dir, err)
	}

	name := newName
	if name == "" {
		name = filepath.Base(src)
	}
	dst := util.UniquePath(filepath.Join(dir, name))
	n, err := util.CopyFile(src, dst)
	if err != nil {
		return "", model.NewError(model.ErrFilesystem, "copy", dst, err)
	}
	slog.Info("exported", "from", src, "to", dst, "size", format.HumanizeBytes(n))
	return dst, nil
}

// Batch exports every file in srcs to dir. Failures do not stop the batch;
// the exported paths are returned together with the joined errors.
func Batch(srcs []string, dir string) ([]string, error) {
	var done []string
	var errs []error
	for _, src := range srcs {
		dst, err := File(src, dir, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		done = append(done, dst)
	}
	return done, errors.Join(errs...)
}

// FileInfo describes a file on disk.
type FileInfo struct {
	Path     string
	Name     string
	Size     int64
	IsDir    bool
	Modified time.Time
}

func (f FileInfo) String() string {
	return fmt.Sprintf("%s  %s  %s", f.Name, format.HumanizeBytes(f.Size), f.Modified.Format(time.DateTime))
}

// Info stats path.
func Info(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, model.NewError(model.ErrFilesystem, "stat", path, err)
	}
	return FileInfo{
		Path:     path,
		Name:     fi.Name(),
		Size:     fi.Size(),
		IsDir:    fi.IsDir(),
		Modified: fi.ModTime(),
	}, nil
}
