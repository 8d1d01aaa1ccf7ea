package preview_handler

import (
	"encoding/json"
	"net/http"

	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/preview"
)

type PreviewHandler struct {
	Fetcher *preview.Fetcher
}

func NewPreviewHandler(fetcher *preview.Fetcher) *PreviewHandler {
	return &PreviewHandler{Fetcher: fetcher}
}

// GetPreview resolves link metadata for ?url=. Failures map to 422 because
// the url itself was fine as input, the lookup just produced nothing usable.
func (h *PreviewHandler) GetPreview(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		return app_error.NewAppError(http.StatusBadRequest, "url query parameter is required", "url")
	}

	meta, err := h.Fetcher.Fetch(r.Context(), rawURL)
	if err != nil {
		return app_error.NewAppError(http.StatusUnprocessableEntity, err.Error(), "url")
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("preview resolved", *meta, reqID))

	return nil
}
