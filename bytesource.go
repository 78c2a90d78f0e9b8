package sgmlreader

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// FileByteSource resolves a URI against the local filesystem when it
// has no scheme (or scheme "file"), and otherwise fetches it over
// HTTP/HTTPS, honoring an optional proxy string the way the CLI's
// -proxy flag does. It is the concrete ByteSource DefaultByteSource
// installs when a caller configures none of its own.
type FileByteSource struct {
	Proxy string
}

// Open implements ByteSource.
func (fs *FileByteSource) Open(uri string) (io.ReadCloser, string, string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := uri
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, "", "", ferr
		}
		abs, _ := filepath.Abs(path)
		return f, "file://" + abs, contentTypeFromExt(path), nil
	}

	client := &http.Client{}
	if fs.Proxy != "" {
		proxyURL, perr := url.Parse("http://" + fs.Proxy)
		if perr != nil {
			return nil, "", "", perr
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	resp, err := client.Get(uri)
	if err != nil {
		return nil, "", "", err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", "", fmt.Errorf("sgmlreader: %s: HTTP %d", uri, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if mt, _, perr := mime.ParseMediaType(contentType); perr == nil {
		contentType = mt
	}
	resolved := resp.Request.URL.String()
	return resp.Body, resolved, contentType, nil
}

func contentTypeFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".html", ".htm":
		return "text/html"
	case ".xml":
		return "text/xml"
	default:
		return ""
	}
}

// DefaultByteSource is the ByteSource NewReader's WithHref path uses
// when the caller supplies none of its own.
var DefaultByteSource ByteSource = &FileByteSource{}
