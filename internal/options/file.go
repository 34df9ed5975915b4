package options

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// File persists option values per bot in a TOML document, one table per bot
// id:
//
//	[fish-fryer]
//	run_time = 45
//	take_breaks = [" "]
type File struct {
	path string
}

// NewFile returns a File backed by path. The file is created on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) read() (map[string]map[string]any, error) {
	doc := map[string]map[string]any{}
	if _, err := toml.DecodeFile(f.path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read options file %s: %w", f.path, err)
	}
	return doc, nil
}

// Load returns the saved raw values for bot, or nil when none are saved.
func (f *File) Load(bot string) (map[string]any, error) {
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc[bot], nil
}

// Save replaces the saved values for bot, keeping other bots' tables.
func (f *File) Save(bot string, v Values) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[bot] = v.Raw()

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create options directory: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to write options file: %w", err)
	}
	if err := toml.NewEncoder(out).Encode(doc); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode options: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write options file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
