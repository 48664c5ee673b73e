package feed

import (
	"net/http"

	"feedhook/internal/domain/entity"
	"feedhook/internal/handler/http/respond"
	feedUC "feedhook/internal/usecase/feed"
)

type ListHandler struct{ Svc feedUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []*entity.Feed{}
	}
	respond.JSON(w, http.StatusOK, list)
}
