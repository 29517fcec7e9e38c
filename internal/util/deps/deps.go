// Package deps locates the external media tools (ffmpeg, ffprobe).
package deps

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"cilicili/internal/model"
)

// Strategy yields candidate paths for an executable, in priority order.
type Strategy interface {
	Name() string
	Candidates(binary string) []string
}

// RelativePaths joins the binary name onto each dir. Relative dirs are
// resolved against Base, or the working directory when Base is empty.
type RelativePaths struct {
	Label string
	Base  string
	Dirs  []string
}

func (s RelativePaths) Name() string { return s.Label }

func (s RelativePaths) Candidates(binary string) []string {
	out := make([]string, 0, len(s.Dirs))
	for _, d := range s.Dirs {
		p := filepath.Join(d, binary)
		if s.Base != "" && !filepath.IsAbs(p) {
			p = filepath.Join(s.Base, p)
		}
		out = append(out, p)
	}
	return out
}

// ResourceDir looks next to the running executable, where packaged
// installs place bundled tools.
type ResourceDir struct {
	// Executable overrides os.Executable (tests).
	Executable func() (string, error)
}

func (ResourceDir) Name() string { return "resource dir" }

func (s ResourceDir) Candidates(binary string) []string {
	exe := s.Executable
	if exe == nil {
		exe = os.Executable
	}
	p, err := exe()
	if err != nil {
		return nil
	}
	dir := filepath.Dir(p)
	out := []string{
		filepath.Join(dir, "resources", binary),
		filepath.Join(dir, binary),
	}
	if runtime.GOOS == "darwin" {
		// <App>.app/Contents/MacOS/<exe> -> <App>.app/Contents/Resources
		out = append(out, filepath.Join(dir, "..", "Resources", binary))
	}
	return out
}

// SearchPath consults $PATH.
type SearchPath struct{}

func (SearchPath) Name() string { return "PATH" }

func (SearchPath) Candidates(binary string) []string {
	p, err := exec.LookPath(binary)
	if err != nil {
		return nil
	}
	return []string{p}
}

// DefaultStrategies is the search order used by the CLI: a development
// build tree, a resources/ subtree, the working directory, the packaged
// resource directory and finally $PATH.
func DefaultStrategies() []Strategy {
	return []Strategy{
		RelativePaths{Label: "build tree", Dirs: []string{"../../..", "../..", ".."}},
		RelativePaths{Label: "resources", Dirs: []string{"resources", "../resources", "../../resources", "../../../resources"}},
		RelativePaths{Label: "current dir", Dirs: []string{"."}},
		ResourceDir{},
		SearchPath{},
	}
}

// Locator walks its strategies and returns the first candidate that exists.
type Locator struct {
	Strategies []Strategy
}

// NewLocator returns a Locator using DefaultStrategies.
func NewLocator() *Locator {
	return &Locator{Strategies: DefaultStrategies()}
}

// Find returns the absolute, symlink-resolved path of binary. Only
// existence is checked, not the executable bit.
func (l *Locator) Find(binary string) (string, error) {
	name := binaryName(binary)
	var tried []string
	for _, s := range l.Strategies {
		for _, c := range s.Candidates(name) {
			tried = append(tried, fmt.Sprintf("%s (%s)", c, s.Name()))
			if _, err := os.Stat(c); err != nil {
				continue
			}
			p := canonical(c)
			slog.Debug("located tool", "tool", binary, "path", p, "strategy", s.Name())
			return p, nil
		}
	}
	e := model.NewError(model.ErrToolNotFound, "locate", binary, nil)
	if len(tried) > 0 {
		e.Detail = "tried " + strings.Join(tried, ", ")
	}
	return "", e
}

// FindFFmpeg returns the ffmpeg path. A non-empty customPath is tried
// first, as a file path and then as a $PATH lookup.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return canonical(customPath), nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", model.NewError(model.ErrToolNotFound, "locate", customPath, fmt.Errorf("could not find ffmpeg at %q", customPath))
	}
	return NewLocator().Find("ffmpeg")
}

// FindFFprobe prefers the ffprobe shipped next to ffmpeg.
func FindFFprobe(ffmpegPath string) (string, error) {
	if ffmpegPath != "" {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), binaryName("ffprobe"))
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	return NewLocator().Find("ffprobe")
}

func binaryName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}
	return base
}

func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
