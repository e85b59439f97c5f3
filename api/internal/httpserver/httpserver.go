package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers "ok", or 503 when the database is configured and unreachable.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Register mounts /healthz and the index on mux. The bot's webhook handler is
// registered on the same mux by tgbotapi.
func Register(mux *http.ServeMux, db Pinger) {
	mux.HandleFunc("/healthz", HealthHandler(db))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("exam reader bot"))
	})
}

func Start(addr string, log zerolog.Logger) error {
	log.Info().Str("addr", addr).Msg("health server listening on /healthz")
	return http.ListenAndServe(addr, nil) // DefaultServeMux
}
