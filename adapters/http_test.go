package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brettbedarf/datanode"
	"github.com/brettbedarf/datanode/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// newTestServer serves "hello" at /index.html, 404 everywhere else, and
// counts the requests it receives.
func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/", "/index.html":
			w.Header().Set("Content-Length", "5")
			_, _ = io.WriteString(w, "hello")
		case "/upload":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
		case "/reject":
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusForbidden)
		case "/headers":
			_, _ = io.WriteString(w, r.Header.Get("X-Test")+"|"+r.Header.Get(RequestIDHeader)+"|"+r.Method)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNewHTTPNode_URLValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		wantErr bool
		desc    string
	}{
		// Valid cases
		{"http://test.com", false, "basic HTTP URL"},
		{"https://test.com", false, "basic HTTPS URL"},
		{"  http://test.com   ", false, "URL with whitespace"},
		{"http://test.com/path?arg=1&arg2=2", false, "URL with path and query"},
		{"http://test.com:8080", false, "URL with port"},
		{"http://localhost:8080/test", false, "localhost with port"},
		{"http://123.123.123.123/test", false, "IP address"},

		// Invalid cases
		{"", true, "empty string"},
		{" ", true, "whitespace only"},
		{"_", true, "invalid character"},
		{"ftp://test.com", true, "different scheme rejected"},
		{"test.com", true, "missing scheme"},
		{"http://", true, "missing host"},
		{"http://[::1", true, "malformed host"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			n, err := NewHTTPNode(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, datanode.IsIOError(err))
				assert.Nil(t, n)
			} else {
				require.NoError(t, err)
				require.NotNil(t, n)
				assert.Equal(t, HTTPMethodGet, n.Method())
			}
		})
	}
}

func TestHTTPNode_ChildNormalization(t *testing.T) {
	t.Parallel()

	root, err := NewHTTPNode("http://example.com/")
	require.NoError(t, err)

	n := root.Child("/fish").Child("long/").Child("/wide/").Child("big/").Child("index.html/")
	assert.Equal(t, "http://example.com/fish/long/wide/big/index.html/", n.String())
	assert.Equal(t, "/fish/long/wide/big/index.html/", n.Path())
}

func TestHTTPNode_ChildJoinRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base  string
		child string
		want  string
	}{
		{"http://h/a", "b", "http://h/a/b"},   // neither
		{"http://h/a/", "b", "http://h/a/b"},  // parent only
		{"http://h/a", "/b", "http://h/a/b"},  // child only
		{"http://h/a/", "/b", "http://h/a/b"}, // both
		{"http://h", "b", "http://h/b"},
		{"http://h", "/b/", "http://h/b/"},
		{"http://h/a?q=1#frag", "b", "http://h/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.child, func(t *testing.T) {
			n, err := NewHTTPNode(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Child(tt.child).String())
		})
	}
}

func TestHTTPNode_Name(t *testing.T) {
	t.Parallel()

	root, err := NewHTTPNode("http://example.com/")
	require.NoError(t, err)
	bare, err := NewHTTPNode("http://example.com")
	require.NoError(t, err)
	index, err := NewHTTPNode("http://example.com/index.html")
	require.NoError(t, err)

	assert.Equal(t, "", root.Name())
	assert.Equal(t, "", bare.Name())
	assert.Equal(t, "", root.Child("/").Name())
	assert.Equal(t, "", root.Child("/").Child("/").Name())
	assert.Equal(t, "a", root.Child("/a").Name())
	assert.Equal(t, "a", root.Child("/a/").Name())
	assert.Equal(t, "b", root.Child("/a/").Child("/b").Name())
	assert.Equal(t, "index.html", index.Name())
	assert.Equal(t, "index.html", root.Child("fish").Child("index.html").Name())
}

func TestHTTPNode_Exists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, _ := newTestServer(t)

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/index.html", true},
		{"/fish", false},
		{"/fish/", false},
		{"/upload", false}, // 201 is not 200
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, err := NewHTTPNode(srv.URL + tt.path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = n.Close() })

			ok, err := n.Exists(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			isFile, err := n.IsFile(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, isFile)
			isDir, err := n.IsDir(ctx)
			require.NoError(t, err)
			assert.Equal(t, !tt.want, isDir, "missing resources are reported as directories")
		})
	}
}

func TestHTTPNode_ConnectionIsCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, hits := newTestServer(t)

	n, err := NewHTTPNode(srv.URL + "/index.html")
	require.NoError(t, err)
	defer n.Close()

	_, err = n.Exists(ctx)
	require.NoError(t, err)
	_, err = n.IsDir(ctx)
	require.NoError(t, err)
	size, err := n.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	data, err := datanode.Read(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int32(1), hits.Load(), "one connection per node")

	// children are fresh nodes with their own connection
	child := n.Child("x").(*HTTPNode)
	defer child.Close()
	ok, err := child.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPNode_SetMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL+"/headers", WithHeader("X-Test", "yes"))
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, n.SetMethod("post"))
	assert.Equal(t, HTTPMethodPost, n.Method())

	body, err := datanode.ReadString(ctx, n, nil)
	require.NoError(t, err)
	parts := strings.Split(body, "|")
	require.Len(t, parts, 3)
	assert.Equal(t, "yes", parts[0])
	assert.Len(t, parts[1], 36, "request id must be a UUID")
	assert.Equal(t, HTTPMethodPost, parts[2])

	err = n.SetMethod(HTTPMethodPut)
	assert.ErrorIs(t, err, datanode.ErrAlreadyConnected)
	assert.Equal(t, HTTPMethodPost, n.Method())
}

func TestHTTPNode_OpenErrorStatus(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL + "/missing")
	require.NoError(t, err)
	defer n.Close()

	_, err = n.Open(context.Background())
	require.Error(t, err)
	assert.True(t, datanode.IsIOError(err))
	assert.ErrorIs(t, err, datanode.ErrStatus)
}

func TestHTTPNode_TransportFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &MockHTTPClient{}
	client.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))
	n, err := NewHTTPNode("http://unreachable.invalid/", WithClient(client))
	require.NoError(t, err)

	ok, err := n.Exists(ctx)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, datanode.IsIOError(err))
	assert.Contains(t, err.Error(), "connection refused")

	// failed attempts are not cached
	_, err = n.Size(ctx)
	require.Error(t, err)
	client.AssertNumberOfCalls(t, "Do", 2)
}

func TestHTTPNode_UnknownContentLength(t *testing.T) {
	t.Parallel()

	client := &MockHTTPClient{}
	client.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == HTTPMethodGet && r.URL.String() == "http://x.test/stream"
	})).Return(&http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: -1,
		Body:          io.NopCloser(strings.NewReader("chunk")),
	}, nil)

	n, err := NewHTTPNode("http://x.test/stream", WithClient(client))
	require.NoError(t, err)

	size, err := n.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)
	client.AssertExpectations(t)
}

func TestHTTPNode_OpenWriter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL + "/upload")
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, datanode.Write(ctx, n, []byte("payload")))

	// the upload response became the cached connection
	body, err := datanode.ReadString(ctx, n, nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", body)
	assert.Equal(t, HTTPMethodPost, n.conn.Header.Get("X-Method"), "GET nodes upload with POST")

	_, err = n.OpenWriter(ctx)
	assert.ErrorIs(t, err, datanode.ErrAlreadyConnected)
}

func TestHTTPNode_OpenWriterWithMethod(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL+"/upload", WithMethod("put"))
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, datanode.WriteString(context.Background(), n, "x", nil))
	assert.Equal(t, HTTPMethodPut, n.conn.Header.Get("X-Method"))
}

func TestHTTPNode_OpenWriterRejected(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL + "/reject")
	require.NoError(t, err)
	defer n.Close()

	err = datanode.Write(context.Background(), n, []byte("payload"))
	require.Error(t, err)
	assert.ErrorIs(t, err, datanode.ErrStatus)
}

func TestHTTPNode_ConnectWhileWriting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, _ := newTestServer(t)

	n, err := NewHTTPNode(srv.URL + "/upload")
	require.NoError(t, err)
	defer n.Close()

	w, err := n.OpenWriter(ctx)
	require.NoError(t, err)

	_, err = n.Exists(ctx)
	assert.ErrorIs(t, err, datanode.ErrAlreadyConnected)
	assert.ErrorIs(t, n.SetMethod(HTTPMethodPut), datanode.ErrAlreadyConnected)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close repeats the first result")
	ok, err := n.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "201 Created is not 200")
}

func TestHTTPNode_NoopsAndListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &MockHTTPClient{}
	n, err := NewHTTPNode("http://example.com/dir/", WithClient(client))
	require.NoError(t, err)

	assert.NoError(t, n.Mkdirs(ctx))
	assert.NoError(t, n.Touch(ctx))
	assert.NoError(t, n.Create(ctx))
	assert.NoError(t, n.Remove(ctx))

	names, err := n.ChildrenNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	children, err := n.Children(ctx)
	require.NoError(t, err)
	assert.Empty(t, children)

	client.AssertNotCalled(t, "Do", mock.Anything)
}

func TestHTTPOptionsFromConfig(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	cfg := config.NewDefaultConfig()
	cfg.HTTPMethod = HTTPMethodPatch
	cfg.Headers = map[string]string{"X-Test": "from-config"}

	n, err := NewHTTPNode(srv.URL+"/headers", HTTPOptionsFromConfig(cfg)...)
	require.NoError(t, err)
	defer n.Close()
	assert.Equal(t, HTTPMethodPatch, n.Method())

	child := n.Child("/").(*HTTPNode)
	assert.Equal(t, HTTPMethodPatch, child.Method(), "children inherit the method")
	assert.Equal(t, "from-config", child.header.Get("X-Test"))
	assert.Equal(t, cfg.UserAgent, child.header.Get("User-Agent"))
}
