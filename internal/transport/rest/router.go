package rest

import (
	"net/http"

	"github.com/heartmarshall/myenglish-exercises/internal/transport/middleware"
)

// Routes groups everything NewRouter mounts.
type Routes struct {
	Health   *HealthHandler
	Exercise *ExerciseHandler

	// API wraps every /api route; StartLimit wraps session creation only.
	API        middleware.Middleware
	StartLimit middleware.Middleware
}

// NewRouter builds the HTTP mux. Probes are mounted without the API
// middleware.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", rt.Health.Live)
	mux.HandleFunc("GET /ready", rt.Health.Ready)
	mux.HandleFunc("GET /health", rt.Health.Health)

	api := func(h http.HandlerFunc) http.Handler { return rt.API(h) }
	ex := rt.Exercise

	mux.Handle("POST /api/exercises", rt.API(rt.StartLimit(http.HandlerFunc(ex.Start))))
	mux.Handle("GET /api/exercises/{id}", api(ex.Get))
	mux.Handle("DELETE /api/exercises/{id}", api(ex.Finish))
	mux.Handle("POST /api/exercises/{id}/items/{index}", api(ex.Open))
	mux.Handle("POST /api/exercises/{id}/moves", api(ex.Move))
	mux.Handle("POST /api/exercises/{id}/drag", api(ex.PickUp))
	mux.Handle("DELETE /api/exercises/{id}/drag", api(ex.Cancel))
	mux.Handle("POST /api/exercises/{id}/drop", api(ex.DropOn))
	mux.Handle("POST /api/exercises/{id}/hints", api(ex.Hint))
	mux.Handle("POST /api/exercises/{id}/submit", api(ex.Submit))
	mux.Handle("GET /api/attempts", api(ex.History))

	return mux
}
