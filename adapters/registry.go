package adapters

import (
	"net/url"

	"github.com/brettbedarf/datanode"
)

// RegisterFile registers the opener for local paths and file:// URLs
func RegisterFile(opts ...FileOption) {
	datanode.RegisterScheme(datanode.FileScheme, func(location string) (datanode.Node, error) {
		return NewFileNode(localPath(location), opts...)
	})
}

// RegisterHTTP registers the opener for scheme ("http" or "https")
func RegisterHTTP(scheme string, opts ...HTTPOption) {
	datanode.RegisterScheme(scheme, func(location string) (datanode.Node, error) {
		return NewHTTPNode(location, opts...)
	})
}

// localPath strips the file:// prefix from location if present
func localPath(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != datanode.FileScheme {
		return location
	}
	return u.Path
}
