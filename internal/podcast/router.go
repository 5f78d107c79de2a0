package podcast

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const Route = "/getPodcast"

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// NewRouter exposes the handler on /getPodcast for any origin.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle(Route, otelhttp.NewHandler(h, "getPodcast")).Methods(http.MethodGet, http.MethodOptions)
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(cors)

	return r
}
