package main

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/ochinchina/gotox/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// StatusServer exposes the run report, a per-environment run trigger
// and the prometheus metrics over HTTP in watch mode
type StatusServer struct {
	runner  *runner.Runner
	trigger func(env string)

	lock sync.Mutex
	ln   net.Listener
}

// NewStatusServer creates a StatusServer for the runner. trigger is
// called with the environment name when a run is requested over HTTP.
func NewStatusServer(r *runner.Runner, trigger func(env string)) *StatusServer {
	return &StatusServer{runner: r, trigger: trigger}
}

// Start listens on listenAddr and serves until Stop is called
func (s *StatusServer) Start(listenAddr string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(runner.NewEnvCollector(s.runner))

	router := mux.NewRouter()
	router.HandleFunc("/status", s.getStatus).Methods("GET")
	router.HandleFunc("/env/{name}", s.getEnv).Methods("GET")
	router.HandleFunc("/env/{name}/run", s.postRunEnv).Methods("POST")
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.WithFields(log.Fields{"addr": listenAddr, log.ErrorKey: err}).Error("fail to listen on the status address")
		return
	}
	log.WithFields(log.Fields{"addr": listenAddr}).Info("start the status http server")
	s.lock.Lock()
	s.ln = listener
	s.lock.Unlock()
	http.Serve(listener, router)
}

// Stop stops network listening
func (s *StatusServer) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
}

func (s *StatusServer) getStatus(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.runner.Report())
}

func (s *StatusServer) getEnv(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	result := s.runner.Result(name)
	if result == nil {
		http.Error(w, "no such environment", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *StatusServer) postRunEnv(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	if s.runner.Config().GetTestEnv(name) == nil {
		http.Error(w, "no such environment", http.StatusNotFound)
		return
	}
	s.trigger(name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{"env": name, "triggered": true})
}
