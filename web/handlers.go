package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/editor"
	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/scenefile"
	"github.com/mogaika/scene_editor/status"
	"github.com/mogaika/scene_editor/utils"
	"github.com/mogaika/scene_editor/webutils"
)

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, editor.ErrNodeNotFound) {
		code = http.StatusNotFound
	}
	webutils.WriteErrorStatus(w, code, err)
}

func writeResult(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, map[string]bool{"ok": true})
	}
}

func nodeVar(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, errors.Wrapf(err, "bad node id %q", mux.Vars(r)[name])
}

func intQuery(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	return v, errors.Wrapf(err, "param %q is not integer", name)
}

func HandlerAjaxFiles(w http.ResponseWriter, r *http.Request) {
	if files, err := ServerEditor.Files(); err != nil {
		writeError(w, err)
	} else {
		if files == nil {
			files = []string{}
		}
		webutils.WriteJson(w, files)
	}
}

func HandlerActionOpen(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	err := ServerEditor.Open(r.Context(), file)
	if err == nil {
		status.Info("Opened %s", file)
	}
	writeResult(w, err)
}

func HandlerActionSave(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	err := ServerEditor.Save(r.Context(), file)
	if err == nil {
		status.Info("Saved %s", file)
	}
	writeResult(w, err)
}

func HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	if doc, err := ServerEditor.Document(r.Context()); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, doc)
	}
}

func HandlerAjaxTree(w http.ResponseWriter, r *http.Request) {
	if tree, err := ServerEditor.Tree(r.Context()); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, tree)
	}
}

func HandlerAjaxFrame(w http.ResponseWriter, r *http.Request) {
	if frame, err := ServerEditor.Frame(r.Context()); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, frame)
	}
}

func HandlerUploadScene(w http.ResponseWriter, r *http.Request) {
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := ServerEditor.Load(r.Context(), data); err != nil {
		writeError(w, errors.Wrap(err, "load uploaded scene"))
		return
	}
	status.Info("Loaded uploaded scene")
	writeResult(w, nil)
}

func HandlerDumpSceneGLTF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := ServerEditor.ExportGLTF(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, "scene.glb")
}

func HandlerDumpDebugScene(w http.ResponseWriter, r *http.Request) {
	if dump, err := ServerEditor.DumpScene(r.Context()); err != nil {
		writeError(w, err)
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, dump)
	}
}

type addNodeRequest struct {
	Name      string `json:"name"`
	Primitive string `json:"primitive"`
}

func HandlerAjaxAddNode(w http.ResponseWriter, r *http.Request) {
	parent, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addNodeRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if id, err := ServerEditor.AddNode(r.Context(), parent, req.Name, req.Primitive); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, map[string]string{"id": id.String()})
	}
}

func HandlerAjaxDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ServerEditor.DeleteNode(r.Context(), id))
}

// rotation is in degrees here, everything behind the http surface uses
// radians. Missing channels take identity values.
type transformRequest struct {
	Position *[3]float64 `json:"position"`
	Rotation *[3]float64 `json:"rotation"`
	Scale    *[3]float64 `json:"scale"`
}

func (req *transformRequest) Transform() r3d.Transform {
	t := r3d.NewTransform()
	if req.Position != nil {
		t.Position = mgl64.Vec3(*req.Position)
	}
	if req.Rotation != nil {
		t.Rotation = r3d.EulerFromVec3(utils.DegreeToRadiansV3(mgl64.Vec3(*req.Rotation)))
	}
	if req.Scale != nil {
		t.Scale = mgl64.Vec3(*req.Scale)
	}
	return t
}

func HandlerAjaxNodeTransform(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req transformRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ServerEditor.SetTransform(r.Context(), id, req.Transform()))
}

func HandlerAjaxNodeName(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := webutils.ReadJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ServerEditor.Rename(r.Context(), id, req.Name))
}

func HandlerAjaxNodeParent(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	parent, err := nodeVar(r, "parent")
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ServerEditor.Reparent(r.Context(), id, parent))
}

// yfov is in degrees here
type cameraRequest struct {
	Perspective  *scenefile.Perspective  `json:"perspective"`
	Orthographic *scenefile.Orthographic `json:"orthographic"`
	Active       bool                    `json:"active"`
}

func HandlerAjaxNodeCamera(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req cameraRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	switch {
	case req.Perspective != nil:
		p := req.Perspective
		err = ServerEditor.SetPerspective(ctx, id, mgl64.DegToRad(p.Yfov), p.Aspect, p.Znear, p.Zfar)
	case req.Orthographic != nil:
		o := req.Orthographic
		err = ServerEditor.SetOrthographic(ctx, id, o.Left, o.Right, o.Top, o.Bottom, o.Znear, o.Zfar)
	case !req.Active:
		err = errors.New("expected perspective or orthographic parameters")
	}
	if err == nil && req.Active {
		err = ServerEditor.SetActiveCamera(ctx, id)
	}
	writeResult(w, err)
}

func HandlerAjaxFocus(w http.ResponseWriter, r *http.Request) {
	id, err := nodeVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ServerEditor.Focus(r.Context(), id))
}

func HandlerAjaxAnimations(w http.ResponseWriter, r *http.Request) {
	if list, err := ServerEditor.Animations(r.Context()); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, list)
	}
}

func HandlerAjaxAddAnimation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
		Name   string `json:"name"`
	}
	if err := webutils.ReadJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := uuid.Parse(req.Target)
	if err != nil {
		writeError(w, errors.Wrapf(err, "bad target %q", req.Target))
		return
	}
	if i, err := ServerEditor.AddAnimation(r.Context(), target, req.Name); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, map[string]int{"index": i})
	}
}

func HandlerAjaxDeleteAnimation(w http.ResponseWriter, r *http.Request) {
	anim, _ := strconv.Atoi(mux.Vars(r)["anim"])
	writeResult(w, ServerEditor.RemoveAnimation(r.Context(), anim))
}

// HandlerActionAnimation dispatches playback and frame edits. Frame
// numbers come as query params: frame, after, a, b.
func HandlerActionAnimation(w http.ResponseWriter, r *http.Request) {
	anim, _ := strconv.Atoi(mux.Vars(r)["anim"])
	action := mux.Vars(r)["action"]
	ctx := r.Context()

	var err error
	var result interface{}
	switch action {
	case "play":
		err = ServerEditor.Play(ctx, anim, true)
	case "stop":
		err = ServerEditor.Play(ctx, anim, false)
	case "reverse":
		err = ServerEditor.SetReverse(ctx, anim, true)
	case "forward":
		err = ServerEditor.SetReverse(ctx, anim, false)
	case "frame":
		var f int
		if f, err = intQuery(r, "frame"); err == nil {
			err = ServerEditor.SetFrame(ctx, anim, f)
		}
	case "addframe":
		after := -1
		if r.URL.Query().Get("after") != "" {
			after, err = intQuery(r, "after")
		}
		if err == nil {
			var f int
			f, err = ServerEditor.AddFrame(ctx, anim, after)
			result = map[string]int{"frame": f}
		}
	case "deleteframe":
		var f int
		if f, err = intQuery(r, "frame"); err == nil {
			err = ServerEditor.DeleteFrame(ctx, anim, f)
		}
	case "switchframe":
		var a, b int
		if a, err = intQuery(r, "a"); err == nil {
			if b, err = intQuery(r, "b"); err == nil {
				err = ServerEditor.SwitchFrame(ctx, anim, a, b)
			}
		}
	case "duplicateframe":
		var f int
		if f, err = intQuery(r, "frame"); err == nil {
			f, err = ServerEditor.DuplicateFrame(ctx, anim, f)
			result = map[string]int{"frame": f}
		}
	case "addkeyframe":
		err = ServerEditor.AddKeyframe(ctx, anim)
	case "removekeyframe":
		err = ServerEditor.RemoveKeyframe(ctx, anim)
	case "tween":
		err = ServerEditor.SetTween(ctx, anim, anm.Tween(r.URL.Query().Get("tween")))
	case "fps":
		var fps float64
		if fps, err = strconv.ParseFloat(r.URL.Query().Get("fps"), 64); err == nil {
			err = ServerEditor.SetFPS(ctx, anim, fps)
		}
	default:
		err = errors.Errorf("unknown animation action %q", action)
	}

	if err != nil || result == nil {
		writeResult(w, err)
	} else {
		webutils.WriteJson(w, result)
	}
}

func HandlerDumpAnimation(w http.ResponseWriter, r *http.Request) {
	anim, _ := strconv.Atoi(mux.Vars(r)["anim"])
	clip, err := ServerEditor.Animation(r.Context(), anim)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := yaml.Marshal(clip)
	if err != nil {
		writeError(w, errors.Wrap(err, "marshal clip"))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(data), fmt.Sprintf("animation%d.yaml", anim))
}
