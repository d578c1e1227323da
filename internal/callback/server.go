package callback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"lockfit/internal/domain"
	"lockfit/internal/protocol/deeplink"
	"lockfit/internal/services/router"
)

// URLHandler consumes inbound callback URLs.
type URLHandler interface {
	HandleURL(ctx context.Context, raw string) (router.Result, error)
}

// Server is the loopback callback listener.
type Server struct {
	handler URLHandler
	srv     *http.Server
}

// NewServer returns a Server that will listen on addr, e.g. "127.0.0.1:8976".
func NewServer(addr string, h URLHandler) *Server {
	s := &Server{handler: h}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the HTTP routes. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/forward", s.handleForward).Methods(http.MethodPost)
	for _, k := range domain.Kinds {
		r.HandleFunc("/"+deeplink.CallbackPath(k), s.handleRedirect).Methods(http.MethodGet)
	}
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("Callback listener started")

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	raw := "http://" + r.Host + r.URL.RequestURI()
	res, err := s.handler.HandleURL(r.Context(), raw)
	reply := NewReply(res, err)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if reply.Error != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = fmt.Fprintf(w, "Wallet request failed: %s\n", reply.Error)
		return
	}
	_, _ = fmt.Fprintln(w, "Done. You can return to lockfit.")
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var in forwardRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.URL == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	res, err := s.handler.HandleURL(r.Context(), in.URL)
	status := http.StatusOK
	if errors.Is(err, domain.ErrUnknownCallback) {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewReply(res, err))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		// Query strings carry ciphertext and are not logged.
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("callback request")
	})
}
