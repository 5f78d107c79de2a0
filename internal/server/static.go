package server

import (
	_ "embed"
	"net/http"
)

const liveScriptRoute = "/static/hkm-live.js"

//go:embed static/live.js
var liveScript []byte

func serveLiveScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(liveScript)
}
