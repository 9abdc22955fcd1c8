package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/op/go-logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viert/uidstore/common"
	"github.com/viert/uidstore/config"
	"github.com/viert/uidstore/metric"
	"github.com/viert/uidstore/storage"
)

// Server represents the provisioning http server
type Server struct {
	bind    string
	storage *storage.Store
}

var (
	log = logging.MustGetLogger("server")
)

// NewServer creates and configures a new Server instance
// based on a given loaded store
func NewServer(st *storage.Store, cfg *config.Cfg) *Server {
	return &Server{
		bind:    cfg.Bind,
		storage: st,
	}
}

// Handler returns the http router with all the API handlers.
// Entry names may contain slashes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/info", common.JSONResponse(s.appInfo)).Methods("GET")
	r.HandleFunc("/api/v1/entries", common.JSONResponse(s.listEntries)).Methods("GET")
	r.HandleFunc("/api/v1/entries/{name:.+}", common.JSONResponse(s.getEntry)).Methods("GET")
	r.HandleFunc("/api/v1/entries/{name:.+}", common.JSONResponse(s.writeEntry)).Methods("POST")
	r.HandleFunc("/api/v1/entries/{name:.+}", common.JSONResponse(s.removeEntry)).Methods("DELETE")
	r.HandleFunc("/api/v1/save", common.JSONResponse(s.save)).Methods("POST")
	r.Handle("/metrics", promhttp.HandlerFor(metric.Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	return r
}

// Start creates a http server with all necessary handlers,
// then starts ListenAndServe in background and returns the server
func (s *Server) Start() (*http.Server, error) {
	log.Info("Creating HTTP router")
	srv := &http.Server{
		Addr:    s.bind,
		Handler: s.Handler(),
	}

	go func() {
		log.Infof("server is starting at %s", s.bind)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("server stopped: %s", err)
		}
	}()

	return srv, nil
}
