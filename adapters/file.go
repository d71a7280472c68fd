package adapters

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/brettbedarf/datanode"
	"github.com/brettbedarf/datanode/config"
	"github.com/brettbedarf/datanode/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileNode implements [datanode.Node] for entries of a local (or afero backed)
// filesystem.
type FileNode struct {
	path     string
	fs       afero.Fs
	dirPerm  os.FileMode
	filePerm os.FileMode
	logger   util.Logger
}

// FileOption configures a [FileNode]. Options are inherited by children.
type FileOption func(*FileNode)

// WithFs backs the node by fs instead of the OS filesystem
func WithFs(fs afero.Fs) FileOption {
	return func(n *FileNode) { n.fs = fs }
}

// WithPerms sets the modes of created directories and files
func WithPerms(dir, file os.FileMode) FileOption {
	return func(n *FileNode) {
		n.dirPerm = dir
		n.filePerm = file
	}
}

// WithFileLogger replaces the component logger
func WithFileLogger(logger util.Logger) FileOption {
	return func(n *FileNode) { n.logger = logger }
}

// FileOptionsFromConfig converts cfg into file node options
func FileOptionsFromConfig(cfg *config.Config) []FileOption {
	return []FileOption{WithPerms(cfg.DirPerm, cfg.FilePerm)}
}

// NewFileNode creates a node for path. Relative paths are resolved against the
// working directory; the path does not need to exist.
func NewFileNode(path string, opts ...FileOption) (*FileNode, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, datanode.NewIOError("abs", path, err)
	}
	n := &FileNode{
		path:     abs,
		fs:       afero.NewOsFs(),
		dirPerm:  config.DefaultDirPerm,
		filePerm: config.DefaultFilePerm,
		logger:   util.GetLogger("FileNode"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *FileNode) Name() string {
	name := filepath.Base(n.path)
	if name == string(filepath.Separator) || name == filepath.VolumeName(n.path) {
		return ""
	}
	return name
}

func (n *FileNode) Path() string {
	return n.path
}

func (n *FileNode) String() string {
	return n.path
}

// isAbsent reports whether a stat error means nothing is at the path. A path
// below a regular file fails with ENOTDIR.
func isAbsent(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

// stat returns nil info and nil error when nothing exists at the path
func (n *FileNode) stat() (os.FileInfo, error) {
	info, err := n.fs.Stat(n.path)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, datanode.NewIOError("stat", n.path, err)
	}
	return info, nil
}

func (n *FileNode) IsFile(ctx context.Context) (bool, error) {
	info, err := n.stat()
	if err != nil || info == nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (n *FileNode) IsDir(ctx context.Context) (bool, error) {
	info, err := n.stat()
	if err != nil || info == nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (n *FileNode) Exists(ctx context.Context) (bool, error) {
	info, err := n.stat()
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (n *FileNode) Create(ctx context.Context) error {
	if err := n.fs.MkdirAll(filepath.Dir(n.path), n.dirPerm); err != nil {
		return datanode.NewIOError("create", n.path, err)
	}
	return n.Touch(ctx)
}

func (n *FileNode) Mkdirs(ctx context.Context) error {
	n.logger.Trace().Str("path", n.path).Msg("Mkdirs called")
	if err := n.fs.MkdirAll(n.path, n.dirPerm); err != nil {
		return datanode.NewIOError("mkdirs", n.path, err)
	}
	return nil
}

func (n *FileNode) Touch(ctx context.Context) error {
	n.logger.Trace().Str("path", n.path).Msg("Touch called")
	if info, err := n.stat(); err != nil || info != nil {
		return err
	}
	f, err := n.fs.OpenFile(n.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, n.filePerm)
	if err != nil {
		// lost a race with another creator; the entry is there either way
		if os.IsExist(err) {
			return nil
		}
		return datanode.NewIOError("touch", n.path, err)
	}
	if err := f.Close(); err != nil {
		return datanode.NewIOError("touch", n.path, err)
	}
	return nil
}

// Remove deletes the node, recursing into directories. Every entry of the
// tree is attempted even after a failure; the first failure is returned.
// Removing a missing node is a no-op.
func (n *FileNode) Remove(ctx context.Context) error {
	err := n.removeAll(ctx, n.path)
	if err != nil {
		n.logger.Warn().Err(err).Str("path", n.path).Msg("Remove left entries behind")
		return err
	}
	n.logger.Debug().Str("path", n.path).Msg("Removed")
	return nil
}

func (n *FileNode) removeAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return datanode.NewIOError("remove", path, err)
	}
	info, err := n.lstat(path)
	if err != nil {
		if isAbsent(err) {
			return nil
		}
		return datanode.NewIOError("remove", path, err)
	}

	var first error
	if info.IsDir() {
		entries, err := afero.ReadDir(n.fs, path)
		if err != nil {
			first = datanode.NewIOError("remove", path, err)
		}
		for _, entry := range entries {
			if err := n.removeAll(ctx, filepath.Join(path, entry.Name())); err != nil && first == nil {
				first = err
			}
		}
	}
	if err := n.fs.Remove(path); err != nil && !isAbsent(err) && first == nil {
		first = datanode.NewIOError("remove", path, err)
	}
	return first
}

// lstat does not follow symlinks when the fs supports it, so links are
// removed as leaves and their targets are kept.
func (n *FileNode) lstat(path string) (os.FileInfo, error) {
	if lfs, ok := n.fs.(afero.Lstater); ok {
		info, _, err := lfs.LstatIfPossible(path)
		return info, err
	}
	return n.fs.Stat(path)
}

func (n *FileNode) Size(ctx context.Context) (int64, error) {
	info, err := n.fs.Stat(n.path)
	if err != nil {
		return 0, datanode.NewIOError("size", n.path, err)
	}
	return info.Size(), nil
}

func (n *FileNode) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := n.fs.Open(n.path)
	if err != nil {
		return nil, datanode.NewIOError("open", n.path, err)
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		f.Close() // nolint:errcheck
		return nil, datanode.NewIOError("open", n.path, errors.New("is a directory"))
	}
	return f, nil
}

func (n *FileNode) OpenWriter(ctx context.Context) (io.WriteCloser, error) {
	f, err := n.fs.OpenFile(n.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, n.filePerm)
	if err != nil {
		return nil, datanode.NewIOError("open_writer", n.path, err)
	}
	return f, nil
}

func (n *FileNode) ChildrenNames(ctx context.Context) ([]string, error) {
	isDir, err := n.IsDir(ctx)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return []string{}, nil
	}
	entries, err := afero.ReadDir(n.fs, n.path)
	if err != nil {
		return nil, datanode.NewIOError("list", n.path, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (n *FileNode) Children(ctx context.Context) ([]datanode.Node, error) {
	names, err := n.ChildrenNames(ctx)
	if err != nil {
		return nil, err
	}
	children := make([]datanode.Node, 0, len(names))
	for _, name := range names {
		children = append(children, n.Child(name))
	}
	return children, nil
}

func (n *FileNode) Child(name string) datanode.Node {
	child := *n
	child.path = filepath.Join(n.path, name)
	return &child
}

var _ datanode.Node = (*FileNode)(nil)
