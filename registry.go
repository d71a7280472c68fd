package datanode

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// FileScheme is the scheme whose opener also receives plain local paths.
const FileScheme = "file"

// Opener creates the node for a location. It receives the location exactly as
// passed to [Open].
type Opener func(location string) (Node, error)

var openers = xsync.NewMap[string, Opener]()

// RegisterScheme ties an opener to a URL scheme (case-insensitive) and should
// be called for each node type during app init. Registering a scheme again
// replaces its opener.
func RegisterScheme(scheme string, opener Opener) {
	openers.Store(strings.ToLower(scheme), opener)
}

// UnregisterScheme removes the opener for scheme, if any.
func UnregisterScheme(scheme string) {
	openers.Delete(strings.ToLower(scheme))
}

// Open returns the node for location. Locations with a URL scheme go to that
// scheme's opener; everything else is treated as a local path and handed to
// the [FileScheme] opener.
func Open(location string) (Node, error) {
	scheme := schemeOf(location)
	opener, ok := openers.Load(scheme)
	if !ok {
		return nil, NewIOError("open", location, errors.Wrapf(ErrUnsupportedScheme, "%q", scheme))
	}
	node, err := opener(location)
	if err != nil {
		return nil, NewIOError("open", location, err)
	}
	return node, nil
}

// schemeOf extracts a lower-cased scheme. Single letter schemes are drive
// letters of Windows paths, not URLs.
func schemeOf(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		return FileScheme
	}
	return strings.ToLower(u.Scheme)
}
