package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/scene_editor/editor"
	"github.com/mogaika/scene_editor/status"
)

var ServerEditor *editor.Editor

func NewRouter(ed *editor.Editor, webPath string) *mux.Router {
	ServerEditor = ed

	r := mux.NewRouter()
	r.HandleFunc("/json/files", HandlerAjaxFiles).Methods("GET")
	r.HandleFunc("/action/open/{file:.+}", HandlerActionOpen).Methods("POST")
	r.HandleFunc("/action/save/{file:.+}", HandlerActionSave).Methods("POST")
	r.HandleFunc("/json/scene", HandlerAjaxScene).Methods("GET")
	r.HandleFunc("/json/tree", HandlerAjaxTree).Methods("GET")
	r.HandleFunc("/json/frame", HandlerAjaxFrame).Methods("GET")
	r.HandleFunc("/upload/scene", HandlerUploadScene).Methods("POST")
	r.HandleFunc("/dump/scene.glb", HandlerDumpSceneGLTF).Methods("GET")
	r.HandleFunc("/dump/debug/scene", HandlerDumpDebugScene).Methods("GET")

	r.HandleFunc("/json/nodes/{id}/children", HandlerAjaxAddNode).Methods("POST")
	r.HandleFunc("/json/nodes/{id}", HandlerAjaxDeleteNode).Methods("DELETE")
	r.HandleFunc("/json/nodes/{id}/transform", HandlerAjaxNodeTransform).Methods("PUT")
	r.HandleFunc("/json/nodes/{id}/name", HandlerAjaxNodeName).Methods("PUT")
	r.HandleFunc("/json/nodes/{id}/parent/{parent}", HandlerAjaxNodeParent).Methods("PUT")
	r.HandleFunc("/json/nodes/{id}/camera", HandlerAjaxNodeCamera).Methods("PUT")
	r.HandleFunc("/json/focus/{id}", HandlerAjaxFocus).Methods("POST")

	r.HandleFunc("/json/animations", HandlerAjaxAnimations).Methods("GET")
	r.HandleFunc("/json/animations", HandlerAjaxAddAnimation).Methods("POST")
	r.HandleFunc("/json/animations/{anim:[0-9]+}", HandlerAjaxDeleteAnimation).Methods("DELETE")
	r.HandleFunc("/action/animations/{anim:[0-9]+}/{action}", HandlerActionAnimation).Methods("POST")
	r.HandleFunc("/dump/animation/{anim:[0-9]+}.yaml", HandlerDumpAnimation).Methods("GET")

	r.HandleFunc("/ws/status", status.ServeWs)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func StartServer(addr string, ed *editor.Editor, webPath string) error {
	r := NewRouter(ed, webPath)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
