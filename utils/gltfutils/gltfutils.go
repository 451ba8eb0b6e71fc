package gltfutils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// GLTFCacher remembers what was already written into Doc, keyed by
// the identity of the exported object
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[interface{}]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   NewDocument(),
		cache: make(map[interface{}]interface{}),
	}
}

func (gc *GLTFCacher) AddCache(key interface{}, value interface{}) {
	gc.cache[key] = value
}

func (gc *GLTFCacher) GetCached(key interface{}) (interface{}, bool) {
	v, ok := gc.cache[key]
	return v, ok
}

func (gc *GLTFCacher) GetCachedOr(key interface{}, create func() interface{}) interface{} {
	if v, ok := gc.cache[key]; ok {
		return v
	}
	v := create()
	gc.cache[key] = v
	return v
}

// ExportBinary writes doc as .glb. When cacheDir is not empty a text
// .gltf copy is also saved there as name.gltf.
func ExportBinary(w io.Writer, doc *gltf.Document, cacheDir, name string) error {
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0777); err != nil {
			return errors.Wrapf(err, "create %q", cacheDir)
		}
		if err := gltf.Save(doc, filepath.Join(cacheDir, name+".gltf")); err != nil {
			return errors.Wrapf(err, "save gltf copy")
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
