package datanode

import (
	"context"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ChildrenMatching returns the direct children of n whose name matches the
// glob pattern.
func ChildrenMatching(ctx context.Context, n Node, pattern string) ([]Node, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Wrapf(doublestar.ErrBadPattern, "pattern %q", pattern)
	}
	names, err := n.ChildrenNames(ctx)
	if err != nil {
		return nil, err
	}
	var matched []Node
	for _, name := range names {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", pattern)
		}
		if ok {
			matched = append(matched, n.Child(name))
		}
	}
	return matched, nil
}

// Glob returns the descendants of n whose slash separated path relative to n
// matches pattern. "**" matches any number of path segments.
func Glob(ctx context.Context, n Node, pattern string) ([]Node, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Wrapf(doublestar.ErrBadPattern, "pattern %q", pattern)
	}
	var matched []Node
	if err := globWalk(ctx, n, "", pattern, &matched); err != nil {
		return nil, err
	}
	return matched, nil
}

func globWalk(ctx context.Context, n Node, rel, pattern string, matched *[]Node) error {
	names, err := n.ChildrenNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		child := n.Child(name)
		childRel := path.Join(rel, name)
		ok, err := doublestar.Match(pattern, childRel)
		if err != nil {
			return errors.Wrapf(err, "pattern %q", pattern)
		}
		if ok {
			*matched = append(*matched, child)
		}
		isDir, err := child.IsDir(ctx)
		if err != nil {
			return err
		}
		if isDir {
			if err := globWalk(ctx, child, childRel, pattern, matched); err != nil {
				return err
			}
		}
	}
	return nil
}
