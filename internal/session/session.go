// Package session persists the login cookies between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cilicili/internal/bilibili"
	"cilicili/internal/dirs"
	"cilicili/internal/util"
)

// ErrNoSession is returned by Load when nothing is stored.
var ErrNoSession = errors.New("no stored login")

// Data is one stored login.
type Data struct {
	Cookies   string                `json:"cookies"`
	Profile   *bilibili.UserProfile `json:"user_profile,omitempty"`
	LoginTime int64                 `json:"login_time"` // Unix seconds.
}

// LoggedInAt returns LoginTime as a time.Time.
func (d Data) LoggedInAt() time.Time {
	return time.Unix(d.LoginTime, 0)
}

// file is the on-disk layout.
type file struct {
	LoginData *Data `json:"login_data,omitempty"`
}

// Store reads and writes a single login file.
type Store struct {
	path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Default returns the Store at the platform state directory.
func Default() (*Store, error) {
	p, err := dirs.SessionFile()
	if err != nil {
		return nil, err
	}
	return NewStore(p), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save replaces the stored login. The file is readable by the owner only.
func (s *Store) Save(d Data) error {
	if d.LoginTime == 0 {
		d.LoginTime = time.Now().Unix()
	}
	b, err := json.MarshalIndent(file{LoginData: &d}, "", "  ")
	if err != nil {
		return err
	}
	if err := util.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load returns the stored login, or ErrNoSession.
func (s *Store) Load() (Data, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Data{}, ErrNoSession
	}
	if err != nil {
		return Data{}, fmt.Errorf("read session: %w", err)
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return Data{}, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if f.LoginData == nil || f.LoginData.Cookies == "" {
		return Data{}, ErrNoSession
	}
	return *f.LoginData, nil
}

// Cookies returns the stored cookies, or "" when logged out.
func (s *Store) Cookies() string {
	d, err := s.Load()
	if err != nil {
		return ""
	}
	return d.Cookies
}

// Clear removes the stored login.
func (s *Store) Clear() error {
	return util.RemoveIfExists(s.path)
}
