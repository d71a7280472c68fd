// Package datanode provides a uniform handle over addressable resources such as
// local files, local directories and HTTP resources.
//
// A [Node] is cheap to create and identified by an immutable path or URL.
// Composing children with [Node.Child] never touches the filesystem or the
// network; only the context-taking operations perform I/O. Operations built
// purely from the primitives (reading, writing, descendant traversal, ...) live
// in this package as functions that work with any [Node] implementation.
package datanode

import (
	"context"
	"io"
)

// Node is a handle to a single file, directory or remote resource.
//
// Implementations are not safe for concurrent use on the same instance; use
// separate nodes (i.e. from [Node.Child] or [Open]) per goroutine.
type Node interface {
	// Name returns the last segment of the node's path or "" for a root
	Name() string

	// Path returns the canonical path: absolute local path or URL path
	Path() string

	// String returns the full location (local path or full URL)
	String() string

	IsFile(ctx context.Context) (bool, error)
	IsDir(ctx context.Context) (bool, error)

	// Exists reports whether the resource is present. Absence is never an
	// error; an error means presence could not be determined.
	Exists(ctx context.Context) (bool, error)

	// Create ensures the node exists as a file, creating missing parents
	Create(ctx context.Context) error

	// Mkdirs ensures the node exists as a directory along with its parents.
	// It succeeds if the directory already exists.
	Mkdirs(ctx context.Context) error

	// Touch creates an empty file if nothing exists at the node's path
	Touch(ctx context.Context) error

	// Remove deletes the resource, recursively for directories
	Remove(ctx context.Context) error

	// Size returns the byte length of the resource
	Size(ctx context.Context) (int64, error)

	// Open returns a reader over the resource's content. Callers must close it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// OpenWriter returns a writer into the resource. Callers must close it and
	// check the error returned by Close.
	OpenWriter(ctx context.Context) (io.WriteCloser, error)

	// ChildrenNames returns the names of direct children; empty for anything
	// that is not a listable directory
	ChildrenNames(ctx context.Context) ([]string, error)

	// Children returns the direct children as nodes
	Children(ctx context.Context) ([]Node, error)

	// Child composes the node for name under this node without any I/O
	Child(name string) Node
}
