package handle

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pos-backoffice/internal/xpkg/apperr"
)

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}
