package vfs

import (
	"io"
	"os"
	path_ "path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrOutsideRoot = errors.New("path leaves the directory")

type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Init(parent Directory) {}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

// Locate maps a relative slash separated name to a filesystem path
// inside the directory
func (dd *DirectoryDriver) Locate(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") || path_.IsAbs(name) {
		return "", errors.Wrapf(ErrOutsideRoot, "%q", name)
	}
	clean := path_.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Wrapf(ErrOutsideRoot, "%q", name)
	}
	return filepath.Join(dd.path, filepath.FromSlash(clean)), nil
}

func (dd *DirectoryDriver) List() ([]string, error) {
	entries, err := os.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "list directory %q", dd.path)
	}
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Name())
	}
	sort.Strings(result)
	return result, nil
}

func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	newPath, err := dd.Locate(name)
	if err != nil {
		return nil, err
	}
	s, err := os.Stat(newPath)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %q", name)
	}
	if s.IsDir() {
		return NewDirectoryDriver(newPath), nil
	}
	e := NewDirectoryDriverFile(name)
	e.Init(dd)
	return e, nil
}

func (dd *DirectoryDriver) Add(e Element) error {
	path, err := dd.Locate(e.Name())
	if err != nil {
		return err
	}
	if e.IsDirectory() {
		return errors.Wrapf(os.MkdirAll(path, os.ModePerm), "create directory %q", e.Name())
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrapf(err, "create parent of %q", e.Name())
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrapf(err, "create file %q", e.Name())
	}
	f.Close()
	e.Init(dd)
	return nil
}

func (dd *DirectoryDriver) Remove(name string) error {
	path, err := dd.Locate(name)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.Remove(path), "remove %q", name)
}

// DirectoryDriverFile keeps the name relative to its directory, the
// filesystem path is resolved by Init
type DirectoryDriverFile struct {
	name string
	path string
	f    *os.File
}

func NewDirectoryDriverFile(name string) *DirectoryDriverFile {
	return &DirectoryDriverFile{name: name, path: name}
}

func (ddf *DirectoryDriverFile) Init(parent Directory) {
	if dd, ok := parent.(*DirectoryDriver); ok {
		if p, err := dd.Locate(ddf.name); err == nil {
			ddf.path = p
		}
	}
}

func (ddf *DirectoryDriverFile) Name() string {
	return ddf.name
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Size() int64 {
	stat, err := os.Stat(ddf.path)
	if err != nil {
		return 0
	}
	return stat.Size()
}

func (ddf *DirectoryDriverFile) Open(readonly bool) error {
	if ddf.f != nil {
		return errors.Errorf("file %q already opened", ddf.path)
	}
	flags := os.O_RDWR
	if readonly {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(ddf.path, flags, 0)
	if err != nil {
		return errors.Wrapf(err, "open %q", ddf.path)
	}
	ddf.f = f
	return nil
}

func (ddf *DirectoryDriverFile) Close() error {
	if ddf.f == nil {
		return nil
	}
	err := ddf.f.Close()
	ddf.f = nil
	return errors.Wrapf(err, "close %q", ddf.path)
}

func (ddf *DirectoryDriverFile) Reader() (*io.SectionReader, error) {
	if ddf.f == nil {
		return nil, errors.Errorf("file %q is not opened", ddf.path)
	}
	return io.NewSectionReader(ddf.f, 0, ddf.Size()), nil
}

// Copy replaces the file content with src
func (ddf *DirectoryDriverFile) Copy(src io.Reader) error {
	ddf.Close()

	f, err := os.Create(ddf.path)
	if err != nil {
		return errors.Wrapf(err, "create %q", ddf.path)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return errors.Wrapf(err, "write %q", ddf.path)
	}
	return nil
}
