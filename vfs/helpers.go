package vfs

import (
	"io"
	"io/ioutil"
	path_ "path"
	"strings"

	"github.com/pkg/errors"
)

func OpenFileAndGetReader(f File, readonly bool) (*io.SectionReader, error) {
	if err := f.Open(readonly); err != nil {
		return nil, errors.Wrapf(err, "cannot open file %q", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "cannot get file %q reader", f.Name())
	}
	return r, nil
}

func OpenFileAndCopy(f File, src io.Reader) error {
	if err := f.Open(false); err != nil {
		return errors.Wrapf(err, "cannot open file %q", f.Name())
	}
	defer f.Close()
	return errors.Wrapf(f.Copy(src), "cannot copy data to file %q", f.Name())
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	e, err := d.GetElement(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open file %q", name)
	}
	if e.IsDirectory() {
		return nil, errors.Errorf("%q is a directory, not a file", name)
	}
	return e.(File), nil
}

func ReadFile(d Directory, name string) ([]byte, error) {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	r, err := OpenFileAndGetReader(f, true)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := ioutil.ReadAll(r)
	return data, errors.Wrapf(err, "read %q", name)
}

// WriteFile creates or truncates name and fills it from src
func WriteFile(d Directory, name string, src io.Reader) error {
	f := NewDirectoryDriverFile(name)
	if err := d.Add(f); err != nil {
		return err
	}
	return OpenFileAndCopy(f, src)
}

// ListFiles walks d and returns slash separated names of the files with
// one of the extensions (all files when none given)
func ListFiles(d Directory, exts ...string) ([]string, error) {
	var result []string
	var walk func(dir Directory, prefix string) error
	walk = func(dir Directory, prefix string) error {
		names, err := dir.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			if strings.HasPrefix(name, ".") {
				continue
			}
			e, err := dir.GetElement(name)
			if err != nil {
				return err
			}
			full := path_.Join(prefix, name)
			if sub, ok := e.(Directory); ok {
				if err := walk(sub, full); err != nil {
					return err
				}
				continue
			}
			if matchExt(name, exts) {
				result = append(result, full)
			}
		}
		return nil
	}
	if err := walk(d, ""); err != nil {
		return nil, err
	}
	return result, nil
}

func matchExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(path_.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
