package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brettbedarf/datanode"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func openArg(c *cli.Context, i int) (datanode.Node, error) {
	location := c.Args().Get(i)
	if location == "" {
		return nil, errors.Errorf("missing location argument")
	}
	return datanode.Open(location)
}

// closeNode releases a cached connection if the node holds one
func closeNode(n datanode.Node) {
	if closer, ok := n.(io.Closer); ok {
		closer.Close() // nolint:errcheck
	}
}

// stat

func statAction(c *cli.Context) error {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	defer closeNode(n)
	ctx := c.Context
	out := c.App.Writer

	exists, err := n.Exists(ctx)
	if err != nil {
		return errors.Wrapf(err, "couldn't check %s", n)
	}
	kind, err := datanode.KindOf(ctx, n)
	if err != nil {
		return errors.Wrapf(err, "couldn't classify %s", n)
	}
	fmt.Fprintf(out, "Location: %s\n", n)
	fmt.Fprintf(out, "Name: %s\n", n.Name())
	fmt.Fprintf(out, "Path: %s\n", n.Path())
	fmt.Fprintf(out, "Exists: %t\n", exists)
	fmt.Fprintf(out, "Kind: %s\n", kind)
	if !exists || kind != datanode.KindFile {
		return nil
	}

	size, err := n.Size(ctx)
	if err != nil {
		return errors.Wrapf(err, "couldn't determine size of %s", n)
	}
	if size < 0 {
		fmt.Fprintln(out, "Size: unknown")
	} else {
		fmt.Fprintf(out, "Size: %s (%d bytes)\n", humanize.IBytes(uint64(size)), size)
	}
	contentType, err := datanode.ContentType(ctx, n)
	if err != nil {
		return errors.Wrapf(err, "couldn't sniff content type of %s", n)
	}
	if contentType != "" {
		fmt.Fprintf(out, "Content type: %s\n", contentType)
	}
	return nil
}

// cat

func catAction(c *cli.Context) error {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	defer closeNode(n)

	r, err := n.Open(c.Context)
	if err != nil {
		return errors.Wrapf(err, "couldn't open %s", n)
	}
	defer r.Close() // nolint:errcheck
	if _, err := io.Copy(c.App.Writer, r); err != nil {
		return errors.Wrapf(err, "couldn't read %s", n)
	}
	return nil
}

// put

func putAction(c *cli.Context) (err error) {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	defer closeNode(n)
	ctx := c.Context

	src := c.App.Reader
	if path := c.Args().Get(1); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "couldn't open source %s", path)
		}
		defer f.Close() // nolint:errcheck
		src = f
	}

	if c.Bool("parents") {
		if err := n.Create(ctx); err != nil {
			return errors.Wrapf(err, "couldn't create %s", n)
		}
	}
	w, err := n.OpenWriter(ctx)
	if err != nil {
		return errors.Wrapf(err, "couldn't open %s for writing", n)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "couldn't finish writing %s", n)
		}
	}()
	written, err := io.Copy(w, src)
	if err != nil {
		return errors.Wrapf(err, "couldn't write %s", n)
	}
	fmt.Fprintf(c.App.ErrWriter, "Wrote %s to %s\n", humanize.IBytes(uint64(written)), n)
	return nil
}

// ls

func lsAction(c *cli.Context) error {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	ctx := c.Context

	var names []string
	if pattern := c.String("match"); pattern != "" {
		children, err := datanode.ChildrenMatching(ctx, n, pattern)
		if err != nil {
			return errors.Wrapf(err, "couldn't list %s", n)
		}
		for _, child := range children {
			names = append(names, child.Name())
		}
	} else {
		names, err = n.ChildrenNames(ctx)
		if err != nil {
			return errors.Wrapf(err, "couldn't list %s", n)
		}
	}
	for _, name := range names {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}

// tree

func treeAction(c *cli.Context) error {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	ctx := c.Context

	var nodes []datanode.Node
	if c.Bool("files") {
		nodes, err = datanode.FileDescendants(ctx, n)
	} else {
		nodes, err = datanode.Descendants(ctx, n)
	}
	if err != nil {
		return errors.Wrapf(err, "couldn't walk %s", n)
	}
	printRelative(c.App.Writer, n, nodes)
	return nil
}

// find

func findAction(c *cli.Context) error {
	n, err := openArg(c, 0)
	if err != nil {
		return err
	}
	pattern := c.Args().Get(1)
	if pattern == "" {
		return errors.Errorf("missing pattern argument")
	}

	nodes, err := datanode.Glob(c.Context, n, pattern)
	if err != nil {
		return errors.Wrapf(err, "couldn't search %s", n)
	}
	printRelative(c.App.Writer, n, nodes)
	return nil
}

func printRelative(out io.Writer, root datanode.Node, nodes []datanode.Node) {
	prefix := root.String()
	for _, node := range nodes {
		rel := strings.TrimPrefix(node.String(), prefix)
		rel = strings.TrimLeft(rel, `/\`)
		fmt.Fprintln(out, rel)
	}
}

// mkdir, touch, rm

func eachArg(c *cli.Context, verb string, fn func(datanode.Node) error) error {
	if c.NArg() == 0 {
		return errors.Errorf("missing location argument")
	}
	for i := 0; i < c.NArg(); i++ {
		n, err := openArg(c, i)
		if err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return errors.Wrapf(err, "couldn't %s %s", verb, n)
		}
	}
	return nil
}

func mkdirAction(c *cli.Context) error {
	return eachArg(c, "create directory", func(n datanode.Node) error {
		return n.Mkdirs(c.Context)
	})
}

func touchAction(c *cli.Context) error {
	return eachArg(c, "touch", func(n datanode.Node) error {
		return n.Touch(c.Context)
	})
}

func rmAction(c *cli.Context) error {
	return eachArg(c, "remove", func(n datanode.Node) error {
		if c.Bool("children") {
			return datanode.RemoveChildren(c.Context, n)
		}
		return n.Remove(c.Context)
	})
}
