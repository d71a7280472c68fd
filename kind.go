package datanode

import "context"

// Kind classifies what a node designates.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
)

// KindOf classifies n. A node that is neither a file nor a directory (i.e. a
// missing local path) is [KindUnknown].
func KindOf(ctx context.Context, n Node) (Kind, error) {
	isFile, err := n.IsFile(ctx)
	if err != nil {
		return KindUnknown, err
	}
	if isFile {
		return KindFile, nil
	}
	isDir, err := n.IsDir(ctx)
	if err != nil {
		return KindUnknown, err
	}
	if isDir {
		return KindDir, nil
	}
	return KindUnknown, nil
}
