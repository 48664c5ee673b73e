package feed

import (
	"net/http"

	feedUC "feedhook/internal/usecase/feed"
)

// Register registers the feed admin HTTP handlers with the given mux.
// The whole feed list is read and replaced as one document, so the API is
// just a GET and a PUT on the collection.
func Register(mux *http.ServeMux, svc feedUC.Service) {
	mux.Handle("GET /feeds", ListHandler{svc})
	mux.Handle("PUT /feeds", ReplaceHandler{svc})
}
