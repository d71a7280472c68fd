package datanode

import (
	"context"
	"io"

	"github.com/h2non/filetype"
)

// sniffLen is the header length filetype needs to recognize every type
const sniffLen = 261

// ContentType sniffs the MIME type of n from its first bytes. Unrecognized
// content yields "".
func ContentType(ctx context.Context, n Node) (string, error) {
	r, err := n.Open(ctx)
	if err != nil {
		return "", NewIOError("sniff", n.Path(), err)
	}
	defer r.Close() // nolint:errcheck

	head := make([]byte, sniffLen)
	read, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", NewIOError("sniff", n.Path(), err)
	}

	if read == 0 {
		return "", nil
	}
	kind, err := filetype.Match(head[:read])
	if err != nil {
		return "", NewIOError("sniff", n.Path(), err)
	}
	if kind == filetype.Unknown {
		return "", nil
	}
	return kind.MIME.Value, nil
}
