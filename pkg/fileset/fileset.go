// Package fileset holds the in-memory files a grep command is evaluated against.
package fileset

import "sort"

// FileSet maps unique file names to their content and remembers the order in
// which files were added. The zero value is an empty set ready to use.
type FileSet struct {
	names    []string
	contents map[string]string
}

// New creates a FileSet from name/content pairs, keeping argument order.
func New(files ...File) *FileSet {
	fs := &FileSet{}
	for _, f := range files {
		fs.Add(f.Name, f.Content)
	}
	return fs
}

// FromMap creates a FileSet from a map. Names are sorted for a stable order.
func FromMap(m map[string]string) *FileSet {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fs := &FileSet{}
	for _, name := range names {
		fs.Add(name, m[name])
	}
	return fs
}

// File is a single named file.
type File struct {
	Name    string
	Content string
}

// Add stores content under name. Re-adding a name replaces its content but
// keeps its original position.
func (fs *FileSet) Add(name, content string) {
	if fs.contents == nil {
		fs.contents = make(map[string]string)
	}
	if _, exists := fs.contents[name]; !exists {
		fs.names = append(fs.names, name)
	}
	fs.contents[name] = content
}

// Content returns the content stored under name.
func (fs *FileSet) Content(name string) (string, bool) {
	if fs == nil {
		return "", false
	}
	content, ok := fs.contents[name]
	return content, ok
}

// Names returns file names in insertion order.
func (fs *FileSet) Names() []string {
	if fs == nil {
		return nil
	}
	return append([]string(nil), fs.names...)
}

// Len returns the number of files.
func (fs *FileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.names)
}
