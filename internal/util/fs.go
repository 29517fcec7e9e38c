package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// Exists reports whether path exists. Size and type are not checked.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// SanitizeTitle replaces every rune that is not alphanumeric, space, hyphen
// or underscore with an underscore. Alphanumeric covers every letter and
// number category plus the combining marks Unicode counts as alphabetic.
// The title is NFC-normalised first so composed characters survive as
// single letters.
func SanitizeTitle(s string) string {
	return strings.Map(func(r rune) rune {
		if titleRune(r) {
			return r
		}
		return '_'
	}, norm.NFC.String(s))
}

func titleRune(r rune) bool {
	switch {
	case r == ' ', r == '-', r == '_':
		return true
	case unicode.IsLetter(r), unicode.IsNumber(r):
		return true
	}
	return unicode.Is(unicode.Other_Alphabetic, r)
}

// UniquePath returns path unchanged if nothing exists there, otherwise the
// first free "<stem>_<n><ext>" sibling starting at n=1.
func UniquePath(path string) string {
	if !Exists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
		if !Exists(candidate) {
			return candidate
		}
	}
}

// CopyFile copies src to dst, creating or truncating dst.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return n, nil
}
