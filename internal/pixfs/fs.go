package pixfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ConfigDir  = ".config/pix"
	ConfigFile = "config.yaml"
	DBFile     = "pix.db"
	LogFile    = "pix.log"
)

// PixFS is a filesystem rooted at the pix configuration directory
type PixFS struct {
	root string
}

// New creates a PixFS rooted at ~/.config/pix/, or at home when it is set.
// A relative home is resolved against the current directory. The root is
// created if missing.
func New(home string) (*PixFS, error) {
	root := home
	if root == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(homeDir, ConfigDir)
	} else if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		root = abs
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}

	return &PixFS{root: root}, nil
}

// NewWithRoot creates a PixFS with a custom root without touching disk (for testing)
func NewWithRoot(root string) *PixFS {
	return &PixFS{root: root}
}

// Open implements fs.FS
func (p *PixFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(p.root, name))
}

// Root returns the root directory path
func (p *PixFS) Root() string {
	return p.root
}

// ConfigPath returns the path of config.yaml
func (p *PixFS) ConfigPath() string {
	return filepath.Join(p.root, ConfigFile)
}

// DBPath returns the path of the sqlite database
func (p *PixFS) DBPath() string {
	return filepath.Join(p.root, DBFile)
}

// LogPath returns the path of the log file used by the TUI
func (p *PixFS) LogPath() string {
	return filepath.Join(p.root, LogFile)
}

// OpenLog opens the log file for appending, creating it if needed
func (p *PixFS) OpenLog() (*os.File, error) {
	return os.OpenFile(p.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
