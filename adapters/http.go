package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brettbedarf/datanode"
	"github.com/brettbedarf/datanode/config"
	"github.com/brettbedarf/datanode/internal/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type HTTPMethod = string

const (
	HTTPMethodGet    HTTPMethod = "GET"
	HTTPMethodHead   HTTPMethod = "HEAD"
	HTTPMethodPost   HTTPMethod = "POST"
	HTTPMethodPut    HTTPMethod = "PUT"
	HTTPMethodPatch  HTTPMethod = "PATCH"
	HTTPMethodDelete HTTPMethod = "DELETE"
)

// RequestIDHeader carries a fresh UUID on every connection a node makes
const RequestIDHeader = "X-Request-Id"

// Doer sends HTTP requests; *http.Client satisfies it
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPNode implements [datanode.Node] for a resource served over HTTP(S).
//
// The node connects lazily on the first operation that needs a response and
// keeps that response for its whole life; it is never re-established. A
// resource exists iff that response is 200 OK and anything that does not
// exist is reported as a directory. There is no listing, creation or removal
// protocol, so those operations are no-ops.
type HTTPNode struct {
	url    *url.URL
	method HTTPMethod
	header http.Header
	client Doer
	logger util.Logger

	conn    *http.Response // cached connection, nil until first access
	writing bool           // a request body is being streamed by OpenWriter
}

// HTTPOption configures an [HTTPNode]. Options are inherited by children.
type HTTPOption func(*HTTPNode)

// WithMethod sets the request method (default GET)
func WithMethod(method HTTPMethod) HTTPOption {
	return func(n *HTTPNode) { n.method = strings.ToUpper(method) }
}

// WithHeader adds a request header sent on connection
func WithHeader(key, value string) HTTPOption {
	return func(n *HTTPNode) { n.header.Add(key, value) }
}

// WithClient replaces the client requests are sent with
func WithClient(client Doer) HTTPOption {
	return func(n *HTTPNode) { n.client = client }
}

// WithHTTPLogger replaces the component logger
func WithHTTPLogger(logger util.Logger) HTTPOption {
	return func(n *HTTPNode) { n.logger = logger }
}

// HTTPOptionsFromConfig converts cfg into HTTP node options
func HTTPOptionsFromConfig(cfg *config.Config) []HTTPOption {
	opts := []HTTPOption{
		WithMethod(cfg.HTTPMethod),
		WithClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithHeader("User-Agent", cfg.UserAgent))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, WithHeader(k, v))
	}
	return opts
}

// NewHTTPNode creates a node for rawURL. Malformed URLs and schemes other than
// http and https fail immediately.
func NewHTTPNode(rawURL string, opts ...HTTPOption) (*HTTPNode, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, datanode.NewIOError("parse", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, datanode.NewIOError("parse", rawURL, fmt.Errorf("scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, datanode.NewIOError("parse", rawURL, errors.New("missing host"))
	}

	n := &HTTPNode{
		url:    u,
		method: HTTPMethodGet,
		header: http.Header{},
		client: &http.Client{Timeout: config.DefaultHTTPTimeout},
		logger: util.GetLogger("HTTPNode"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// URL returns a copy of the node's URL
func (n *HTTPNode) URL() *url.URL {
	u := *n.url
	return &u
}

// Method returns the request method used on connection
func (n *HTTPNode) Method() HTTPMethod {
	return n.method
}

// SetMethod changes the request method. It fails with
// [datanode.ErrAlreadyConnected] once the node has connected.
func (n *HTTPNode) SetMethod(method HTTPMethod) error {
	if n.conn != nil || n.writing {
		return datanode.NewIOError("set_method", n.String(), datanode.ErrAlreadyConnected)
	}
	n.method = strings.ToUpper(method)
	return nil
}

// Name returns the last path segment, ignoring one trailing slash, or "" for
// the root.
func (n *HTTPNode) Name() string {
	p := n.url.Path
	if p == "" || p == "/" {
		return ""
	}
	p = strings.TrimSuffix(p, "/")
	return p[strings.LastIndex(p, "/")+1:]
}

func (n *HTTPNode) Path() string {
	return n.url.Path
}

func (n *HTTPNode) String() string {
	return n.url.String()
}

func (n *HTTPNode) newRequest(ctx context.Context, method HTTPMethod, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, n.url.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vals := range n.header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

// connect returns the cached response, establishing it on first use. Failed
// attempts are not cached.
func (n *HTTPNode) connect(ctx context.Context) (*http.Response, error) {
	if n.conn != nil {
		return n.conn, nil
	}
	if n.writing {
		return nil, datanode.NewIOError("connect", n.String(), errors.Wrap(datanode.ErrAlreadyConnected, "request body still open"))
	}

	req, err := n.newRequest(ctx, n.method, nil)
	if err != nil {
		return nil, datanode.NewIOError("connect", n.String(), err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Debug().Err(err).Str("url", n.String()).Str("requestID", req.Header.Get(RequestIDHeader)).Msg("Connection failed")
		return nil, datanode.NewIOError("connect", n.String(), err)
	}
	n.logger.Debug().
		Str("url", n.String()).
		Str("method", n.method).
		Str("requestID", req.Header.Get(RequestIDHeader)).
		Int("status", resp.StatusCode).
		Msg("Connected")
	n.conn = resp
	return resp, nil
}

// Exists reports whether the server answered 200 OK. Any other status is a
// valid false; transport failures are returned as errors.
func (n *HTTPNode) Exists(ctx context.Context) (bool, error) {
	resp, err := n.connect(ctx)
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusOK, nil
}

func (n *HTTPNode) IsFile(ctx context.Context) (bool, error) {
	return n.Exists(ctx)
}

// IsDir is the negation of [HTTPNode.Exists], so a missing resource is
// reported as a directory.
func (n *HTTPNode) IsDir(ctx context.Context) (bool, error) {
	exists, err := n.Exists(ctx)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (n *HTTPNode) Create(ctx context.Context) error { return nil }

func (n *HTTPNode) Mkdirs(ctx context.Context) error { return nil }

func (n *HTTPNode) Touch(ctx context.Context) error { return nil }

func (n *HTTPNode) Remove(ctx context.Context) error { return nil }

// Size returns the declared content length; -1 when the server did not declare one.
func (n *HTTPNode) Size(ctx context.Context) (int64, error) {
	resp, err := n.connect(ctx)
	if err != nil {
		return 0, err
	}
	return resp.ContentLength, nil
}

// Open returns the body of the cached response. Error statuses (>= 400) fail.
func (n *HTTPNode) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := n.connect(ctx)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, datanode.NewIOError("open", n.String(), errors.Wrapf(datanode.ErrStatus, "%s", resp.Status))
	}
	return resp.Body, nil
}

// OpenWriter streams writes into the body of the node's request. Closing the
// writer completes the request and caches its response as the connection, so
// it must be called before the node connects. A GET node sends a POST, like
// most HTTP stacks do for a request with a body.
func (n *HTTPNode) OpenWriter(ctx context.Context) (io.WriteCloser, error) {
	if n.conn != nil || n.writing {
		return nil, datanode.NewIOError("open_writer", n.String(), datanode.ErrAlreadyConnected)
	}
	method := n.method
	if method == HTTPMethodGet {
		method = HTTPMethodPost
	}

	pr, pw := io.Pipe()
	req, err := n.newRequest(ctx, method, pr)
	if err != nil {
		return nil, datanode.NewIOError("open_writer", n.String(), err)
	}

	w := &requestWriter{node: n, pw: pw, done: make(chan result, 1)}
	n.writing = true
	go func() {
		resp, err := n.client.Do(req)
		// unblock writers if the request ended before consuming the body
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close() // nolint:errcheck
		}
		w.done <- result{resp: resp, err: err}
	}()
	n.logger.Debug().Str("url", n.String()).Str("method", method).Msg("Streaming request body")
	return w, nil
}

type result struct {
	resp *http.Response
	err  error
}

// requestWriter is the output stream of an [HTTPNode]
type requestWriter struct {
	node   *HTTPNode
	pw     *io.PipeWriter
	done   chan result
	closed bool
	err    error
}

func (w *requestWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close ends the request body and waits for the response. Non-2xx statuses
// fail with [datanode.ErrStatus].
func (w *requestWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	w.pw.Close() // nolint:errcheck
	res := <-w.done

	n := w.node
	n.writing = false
	if res.err != nil {
		w.err = datanode.NewIOError("write", n.String(), res.err)
		return w.err
	}
	n.conn = res.resp
	n.logger.Debug().Str("url", n.String()).Int("status", res.resp.StatusCode).Msg("Request body sent")
	if res.resp.StatusCode < 200 || res.resp.StatusCode >= 300 {
		w.err = datanode.NewIOError("write", n.String(), errors.Wrapf(datanode.ErrStatus, "%s", res.resp.Status))
	}
	return w.err
}

func (n *HTTPNode) ChildrenNames(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func (n *HTTPNode) Children(ctx context.Context) ([]datanode.Node, error) {
	return []datanode.Node{}, nil
}

// Child joins name onto the URL path with exactly one slash between them and
// keeps whatever trailing slash name has. Query and fragment are dropped.
func (n *HTTPNode) Child(name string) datanode.Node {
	parent := n.url.Path
	parentSlash := strings.HasSuffix(parent, "/")
	childSlash := strings.HasPrefix(name, "/")

	var p string
	switch {
	case !parentSlash && !childSlash:
		p = parent + "/" + name
	case parentSlash && childSlash:
		p = parent + name[1:]
	default:
		p = parent + name
	}

	u := *n.url
	u.Path = p
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	return &HTTPNode{
		url:    &u,
		method: n.method,
		header: n.header.Clone(),
		client: n.client,
		logger: n.logger,
	}
}

// Close releases the cached response body. The connection stays cached.
func (n *HTTPNode) Close() error {
	if n.conn == nil || n.conn.Body == nil {
		return nil
	}
	return n.conn.Body.Close()
}

var _ datanode.Node = (*HTTPNode)(nil)
