package emptyletters

import (
	"fmt"
	"os"
	"path/filepath"
)

// mkdirAll ensures a path exists and is a directory.
func mkdirAll(dir string) error {
	fi, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file in the same directory as
// filename and renames it into place, so readers see either the old or the
// new content, never a partial file. Missing directories are created.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir, name := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	if err := mkdirAll(dir); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, "."+name+"-")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(file.Name())
		}
	}()
	if _, err = file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	if err = os.Chmod(file.Name(), perm); err != nil {
		return err
	}
	return os.Rename(file.Name(), filename)
}
