// Package httpapi exposes a cache over HTTP: one resource per key plus
// stats and Prometheus endpoints. It is a thin consumer of cache.Storage and
// makes no decisions the cache does not.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/memstore/cache"
)

// Store is the cache surface the handler needs.
type Store interface {
	cache.Storage
	Stats() cache.Stats
	ShardStats() []cache.Stats
	ShardCapacity() int64
}

var _ Store = (*cache.Striped)(nil)

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Total  cache.Stats   `json:"total"`
	Shards []cache.Stats `json:"shards"`
}

type handler struct {
	store Store
	log   *slog.Logger
}

// New returns the router. gatherer may be nil to omit /metrics; log may be
// nil to disable request logging.
func New(store Store, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &handler{store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/kv/{key}", h.get)
	r.Put("/kv/{key}", h.put)
	r.Delete("/kv/{key}", h.delete)
	r.Get("/stats", h.stats)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	v, found := h.store.Get(key)
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(v)
}

// put dispatches on ?mode=: put (default), add (PutIfAbsent) or set.
func (h *handler) put(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}

	limit := h.store.ShardCapacity()
	value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit+1))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "entry too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(key)+len(value)) > limit {
		http.Error(w, "entry too large", http.StatusRequestEntityTooLarge)
		return
	}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "put":
		if !h.store.Put(key, value) {
			http.Error(w, "entry too large", http.StatusRequestEntityTooLarge)
			return
		}
	case "add":
		if !h.store.PutIfAbsent(key, value) {
			http.Error(w, "key exists", http.StatusConflict)
			return
		}
	case "set":
		if !h.store.Set(key, value) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
	default:
		http.Error(w, "unknown mode "+mode, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	if !h.store.Delete(key) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	resp := StatsResponse{Total: h.store.Stats(), Shards: h.store.ShardStats()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("httpapi: encode stats", slog.Any("error", err))
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("httpapi: request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)))
	})
}

// keyParam extracts the {key} path segment. chi routes on RawPath when the
// request carries one, in which case the segment is still escaped.
func keyParam(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	key, err := chi.URLParam(r, "key"), error(nil)
	if r.URL.RawPath != "" {
		key, err = url.PathUnescape(key)
	}
	if err != nil || key == "" {
		http.Error(w, "bad key", http.StatusBadRequest)
		return nil, false
	}
	return []byte(key), true
}
