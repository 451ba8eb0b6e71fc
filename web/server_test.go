package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/scene_editor/editor"
	"github.com/mogaika/scene_editor/scenefile"
	"github.com/mogaika/scene_editor/vfs"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newClient(t *testing.T) *client {
	ed := editor.New(editor.Options{
		Dir:        vfs.NewDirectoryDriver(t.TempDir()),
		ManualTick: true,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ed.Run(ctx)
		close(done)
	}()
	srv := httptest.NewServer(NewRouter(ed, ""))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return &client{t: t, srv: srv}
}

func (c *client) do(method, url string, body io.Reader, contentType string) (int, []byte) {
	req, err := http.NewRequest(method, c.srv.URL+url, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

// call expects success and decodes the json answer into out
func (c *client) call(method, url, body string, out interface{}) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	code, data := c.do(method, url, r, "application/json")
	require.Equal(c.t, http.StatusOK, code, "%s %s: %s", method, url, data)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(data, out), string(data))
	}
}

func (c *client) tree() *editor.NodeInfo {
	var tree editor.NodeInfo
	c.call("GET", "/json/tree", "", &tree)
	return &tree
}

func TestNodeAndAnimationRoutes(t *testing.T) {
	c := newClient(t)
	root := c.tree().ID

	var added map[string]string
	c.call("POST", "/json/nodes/"+root+"/children", `{"name": "box", "primitive": "cube"}`, &added)
	box := added["id"]
	require.NotEmpty(t, box)

	c.call("PUT", "/json/nodes/"+box+"/transform", `{"position": [1, 2, 3], "rotation": [0, 90, 0]}`, nil)
	var doc scenefile.Document
	c.call("GET", "/json/scene", "", &doc)
	require.Len(t, doc.Nodes, 3)
	boxNode := doc.Nodes[2]
	assert.Equal(t, "box", boxNode.Name)
	assert.Equal(t, scenefile.Vec3{1, 2, 3}, *boxNode.Translation)
	assert.InDelta(t, math.Pi/2, boxNode.Rotation[1], 1e-12)
	assert.Equal(t, scenefile.Vec3{1, 1, 1}, *boxNode.Scale)

	var index map[string]int
	c.call("POST", "/json/animations", `{"target": "`+root+`", "name": "spin"}`, &index)
	assert.Equal(t, 0, index["index"])

	c.call("POST", "/json/focus/"+box, "", nil)
	c.call("POST", "/action/animations/0/addkeyframe", "", nil)
	var frame map[string]int
	c.call("POST", "/action/animations/0/addframe", "", &frame)
	assert.Equal(t, 1, frame["frame"])
	c.call("POST", "/action/animations/0/frame?frame=3", "", nil)
	c.call("POST", "/action/animations/0/tween?tween=bounce", "", nil)

	var anims []editor.AnimationInfo
	c.call("GET", "/json/animations", "", &anims)
	require.Len(t, anims, 1)
	assert.Equal(t, 2, anims[0].Frames)
	assert.Equal(t, 1, anims[0].Frame)
	assert.Equal(t, "bounce", anims[0].Tween)

	code, data := c.do("GET", "/dump/animation/0.yaml", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(data), "name: spin")
	assert.Contains(t, string(data), "box:")

	code, data = c.do("POST", "/action/animations/0/wiggle", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(data), `"error"`)

	code, _ = c.do("POST", "/action/animations/0/frame?frame=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do("DELETE", "/json/nodes/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = c.do("DELETE", "/json/nodes/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	c.call("DELETE", "/json/nodes/"+box, "", nil)
	c.call("GET", "/json/animations", "", &anims)
	assert.Len(t, anims, 1)

	var fs editor.FrameSnapshot
	c.call("GET", "/json/frame", "", &fs)
	assert.Empty(t, fs.Items)
}

func TestCameraRoute(t *testing.T) {
	c := newClient(t)
	root := c.tree().ID

	var added map[string]string
	c.call("POST", "/json/nodes/"+root+"/children", `{"name": "top"}`, &added)
	top := added["id"]

	c.call("PUT", "/json/nodes/"+top+"/camera",
		`{"orthographic": {"left": -5, "right": 5, "top": 5, "bottom": -5, "znear": 0.1, "zfar": 100}, "active": true}`, nil)

	var doc scenefile.Document
	c.call("GET", "/json/scene", "", &doc)
	topNode := doc.Nodes[2]
	assert.True(t, topNode.ActiveCamera)
	require.NotNil(t, topNode.Camera)
	assert.Equal(t, "orthographic", doc.Cameras[*topNode.Camera].Type)

	c.call("PUT", "/json/nodes/"+top+"/camera", `{"perspective": {"yfov": 90, "aspectRatio": 1, "znear": 0.1, "zfar": 10}}`, nil)
	c.call("GET", "/json/scene", "", &doc)
	cam := doc.Cameras[*doc.Nodes[2].Camera]
	require.NotNil(t, cam.Perspective)
	assert.InDelta(t, math.Pi/2, cam.Perspective.Yfov, 1e-12)

	code, _ := c.do("PUT", "/json/nodes/"+top+"/camera", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSceneFileRoutes(t *testing.T) {
	c := newClient(t)
	root := c.tree().ID
	c.call("POST", "/json/nodes/"+root+"/children", `{"name": "box", "primitive": "cube"}`, nil)

	c.call("POST", "/action/save/scenes/first.json", "", nil)
	var files []string
	c.call("GET", "/json/files", "", &files)
	assert.Equal(t, []string{"scenes/first.json"}, files)

	var doc bytes.Buffer
	require.NoError(t, scenefile.Save(&doc, editor.NewDefaultScene(), nil))
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("data", "scene.json")
	require.NoError(t, err)
	fw.Write(doc.Bytes())
	require.NoError(t, mw.Close())
	code, data := c.do("POST", "/upload/scene", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, code, string(data))
	assert.Len(t, c.tree().Children, 1)

	c.call("POST", "/action/open/scenes/first.json", "", nil)
	assert.Len(t, c.tree().Children, 2)

	code, _ = c.do("POST", "/action/open/scenes/missing.json", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, data = c.do("GET", "/dump/scene.glb", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, bytes.HasPrefix(data, []byte("glTF")))

	code, data = c.do("GET", "/dump/debug/scene", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(data), "box")
}
