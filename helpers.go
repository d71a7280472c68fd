package datanode

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Write replaces the content of n with data using a single writer that is
// always closed before returning.
func Write(ctx context.Context, n Node, data []byte) (err error) {
	w, err := n.OpenWriter(ctx)
	if err != nil {
		return NewIOError("write", n.Path(), err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = NewIOError("write", n.Path(), cerr)
		}
	}()

	if _, err := w.Write(data); err != nil {
		return NewIOError("write", n.Path(), err)
	}
	return nil
}

// WriteString encodes s with enc and writes it to n. A nil enc means UTF-8.
func WriteString(ctx context.Context, n Node, s string, enc encoding.Encoding) error {
	if enc == nil {
		enc = unicode.UTF8
	}
	data, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return NewIOError("encode", n.Path(), err)
	}
	return Write(ctx, n, data)
}

// Read returns the whole content of n.
func Read(ctx context.Context, n Node) ([]byte, error) {
	r, err := n.Open(ctx)
	if err != nil {
		return nil, NewIOError("read", n.Path(), err)
	}
	defer r.Close() // nolint:errcheck

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, NewIOError("read", n.Path(), err)
	}
	return buf.Bytes(), nil
}

// ReadString reads n and decodes it with enc. A nil enc means UTF-8.
func ReadString(ctx context.Context, n Node, enc encoding.Encoding) (string, error) {
	data, err := Read(ctx, n)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", NewIOError("decode", n.Path(), err)
	}
	return string(decoded), nil
}

// ChildrenCount returns the number of direct children of n.
func ChildrenCount(ctx context.Context, n Node) (int, error) {
	names, err := n.ChildrenNames(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// FileDescendants returns every file below n, depth-first. Children that are
// not files are descended into.
func FileDescendants(ctx context.Context, n Node) ([]Node, error) {
	var result []Node
	if err := collectFiles(ctx, n, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func collectFiles(ctx context.Context, n Node, result *[]Node) error {
	children, err := n.Children(ctx)
	if err != nil {
		return err
	}
	for _, child := range children {
		isFile, err := child.IsFile(ctx)
		if err != nil {
			return err
		}
		if isFile {
			*result = append(*result, child)
			continue
		}
		if err := collectFiles(ctx, child, result); err != nil {
			return err
		}
	}
	return nil
}

// Descendants returns every node below n, directories and files, depth-first
// with each directory listed before its content.
func Descendants(ctx context.Context, n Node) ([]Node, error) {
	var result []Node
	if err := collectAll(ctx, n, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func collectAll(ctx context.Context, n Node, result *[]Node) error {
	children, err := n.Children(ctx)
	if err != nil {
		return err
	}
	for _, child := range children {
		*result = append(*result, child)
		isDir, err := child.IsDir(ctx)
		if err != nil {
			return err
		}
		if !isDir {
			continue
		}
		if err := collectAll(ctx, child, result); err != nil {
			return err
		}
	}
	return nil
}

// RemoveChildren removes every direct child of n but keeps n itself. Every
// child is attempted and the first failure is returned.
func RemoveChildren(ctx context.Context, n Node) error {
	children, err := n.Children(ctx)
	if err != nil {
		return err
	}
	var first error
	for _, child := range children {
		if err := child.Remove(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AssertExists returns an [*AssertionError] carrying the node path when n does
// not exist. Failures to determine existence are returned unchanged.
func AssertExists(ctx context.Context, n Node) error {
	ok, err := n.Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(&AssertionError{Path: n.Path()})
	}
	return nil
}
