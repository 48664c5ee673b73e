package feed

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedhook/internal/domain/entity"
	"feedhook/internal/handler/http/respond"
	feedUC "feedhook/internal/usecase/feed"
)

type ReplaceHandler struct{ Svc feedUC.Service }

func (h ReplaceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Unknown keys are rejected rather than stripped: a typoed field
	// name would otherwise silently drop the setting it was meant for.
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req []*entity.Feed
	if err := dec.Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req == nil {
		req = []*entity.Feed{}
	}

	saved, err := h.Svc.ReplaceAll(r.Context(), req)
	if err != nil {
		var validationErr *entity.ValidationError
		switch {
		case errors.Is(err, feedUC.ErrProcessing):
			respond.Error(w, http.StatusServiceUnavailable, err)
		case errors.As(err, &validationErr):
			respond.SafeError(w, http.StatusBadRequest, err)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, saved)
}
