package application

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	stdpath "path"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects embedded schema files from every registered
// module and applies them with goose against a single version table.
// Migration file names must be unique across modules (goose numbering).
type MigrationManager interface {
	RegisterSchema(fsys fs.FS)
	Run(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{
		pool:  pool,
		files: map[string][]byte{},
	}
}

type migrationManager struct {
	pool  *pgxpool.Pool
	files map[string][]byte
}

// RegisterSchema walks the file system and collects every .sql file by its
// base name into the merged migration set.
func (m *migrationManager) RegisterSchema(fsys fs.FS) {
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || stdpath.Ext(path) != ".sql" {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		m.files[stdpath.Base(path)] = data
		return nil
	})
	if err != nil {
		panic(err)
	}
}

func (m *migrationManager) Run(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, &migrationFS{files: m.files})
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

// migrationFS is the flat merged view over all registered schema files.
type migrationFS struct {
	files map[string][]byte
}

func (m *migrationFS) Open(name string) (fs.File, error) {
	if name == "." {
		return &migrationDir{fs: m}, nil
	}
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &migrationFile{name: name, Reader: bytes.NewReader(data)}, nil
}

func (m *migrationFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, fileInfo{name: n, size: int64(len(m.files[n]))})
	}
	return entries, nil
}

func (m *migrationFS) ReadFile(name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

type migrationFile struct {
	name string
	*bytes.Reader
}

func (f *migrationFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: f.name, size: f.Size()}, nil
}

func (f *migrationFile) Close() error { return nil }

type migrationDir struct {
	fs *migrationFS
}

func (d *migrationDir) Stat() (fs.FileInfo, error) {
	return fileInfo{name: ".", dir: true}, nil
}

func (d *migrationDir) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (d *migrationDir) Close() error { return nil }

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fileInfo) Name() string               { return fi.name }
func (fi fileInfo) Size() int64                { return fi.size }
func (fi fileInfo) Mode() fs.FileMode          { return 0o444 }
func (fi fileInfo) ModTime() time.Time         { return time.Time{} }
func (fi fileInfo) IsDir() bool                { return fi.dir }
func (fi fileInfo) Sys() any                   { return nil }
func (fi fileInfo) Type() fs.FileMode          { return fi.Mode().Type() }
func (fi fileInfo) Info() (fs.FileInfo, error) { return fi, nil }
