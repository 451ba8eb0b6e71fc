// Package assets fetches and decodes texture images in the background
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mogaika/scene_editor/vfs"
)

// extensions filetype reports for the formats registered above
var supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"bmp":  true,
	"tif":  true,
	"webp": true,
}

type Result struct {
	URI    string
	Image  image.Image
	Format string
	Err    error
}

// Loader resolves image URIs: data: URIs, http(s) URLs and paths
// relative to the project directory
type Loader struct {
	Dir    vfs.Directory
	Client *http.Client
}

func NewLoader(dir vfs.Directory) *Loader {
	return &Loader{Dir: dir, Client: http.DefaultClient}
}

// Load fetches and decodes uri on its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (l *Loader) Load(ctx context.Context, uri string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		res := Result{URI: uri}
		data, err := l.fetch(ctx, uri)
		if err == nil {
			res.Image, res.Format, err = Decode(data)
		}
		if err != nil {
			res.Err = errors.Wrapf(err, "load image %q", shortURI(uri))
			log.Printf("[assets] %v", res.Err)
		}
		ch <- res
	}()
	return ch
}

func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return decodeDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("http status %v", resp.Status)
		}
		return ioutil.ReadAll(resp.Body)
	}
	if l.Dir == nil {
		return nil, errors.New("no project directory for relative uri")
	}
	return vfs.ReadFile(l.Dir, uri)
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		return data, errors.Wrap(err, "data uri base64")
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), errors.Wrap(err, "data uri")
}

// Decode sniffs the content type before decoding so unsupported data
// gets a meaningful error instead of image.ErrFormat
func Decode(data []byte) (image.Image, string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, "", errors.Wrap(err, "sniff")
	}
	if !filetype.IsImage(data) || !supported[kind.Extension] {
		if kind == filetype.Unknown {
			return nil, "", errors.New("unsupported image type: unknown content")
		}
		return nil, "", errors.Errorf("unsupported image type %q", kind.MIME.Value)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrapf(err, "decode %s", kind.Extension)
	}
	return img, format, nil
}

func shortURI(uri string) string {
	if strings.HasPrefix(uri, "data:") && len(uri) > 48 {
		return uri[:48] + "..."
	}
	return uri
}
