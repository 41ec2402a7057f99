package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

// DownloadCache is the cache administration the handler exposes.
// *fetch.DownloadCache implements it.
type DownloadCache interface {
	Status(ctx context.Context, rawURL string) (*fetch.CacheStatus, error)
	Invalidate(ctx context.Context, rawURL string) error
	Purge(ctx context.Context) (int64, error)
}

// CacheHandler inspects and evicts cached structure downloads.
type CacheHandler struct {
	cache DownloadCache
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(cache DownloadCache) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// PurgeResponse reports how many downloads were evicted.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// Status handles GET /cache/entry?url=.
func (h *CacheHandler) Status(w http.ResponseWriter, r *http.Request) {
	url, err := urlParam(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	st, err := h.cache.Status(r.Context(), url)
	if err != nil {
		writeAppError(w, cacheError(err, "failed to read cache entry"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Invalidate handles DELETE /cache/entry?url=.
func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	url, err := urlParam(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := h.cache.Invalidate(r.Context(), url); err != nil {
		writeAppError(w, cacheError(err, "failed to invalidate cache entry"))
		return
	}
	logging.FromContext(r.Context()).Info("download cache entry invalidated", logging.String("url", url))
	w.WriteHeader(http.StatusNoContent)
}

// Purge handles DELETE /cache.
func (h *CacheHandler) Purge(w http.ResponseWriter, r *http.Request) {
	n, err := h.cache.Purge(r.Context())
	if err != nil {
		writeAppError(w, cacheError(err, "failed to purge download cache"))
		return
	}
	logging.FromContext(r.Context()).Info("download cache purged", logging.Int64("deleted", n))
	writeJSON(w, http.StatusOK, PurgeResponse{Deleted: n})
}

func urlParam(r *http.Request) (string, error) {
	url := r.URL.Query().Get("url")
	if url == "" {
		return "", errorMissing("url")
	}
	return url, nil
}

func cacheError(err error, message string) error {
	var ae *errors.AppError
	if errors.As(err, &ae) {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeCacheError, message)
}

//Personal.AI order the ending
