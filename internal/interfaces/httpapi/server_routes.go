package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerFormationRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/formations", handler.ListFormations)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/lineup-sessions", handler.StartSession)
	mux.HandleFunc("GET /v1/lineup-sessions/{sessionID}", handler.GetSession)
	mux.HandleFunc("DELETE /v1/lineup-sessions/{sessionID}", handler.AbandonSession)
	mux.HandleFunc("POST /v1/lineup-sessions/{sessionID}/roster/reload", handler.ReloadRoster)
	mux.HandleFunc("PUT /v1/lineup-sessions/{sessionID}/formation", handler.SelectFormation)
	mux.HandleFunc("PUT /v1/lineup-sessions/{sessionID}/positions/{position}", handler.AssignToPosition)
	mux.HandleFunc("DELETE /v1/lineup-sessions/{sessionID}/positions/{position}", handler.RemoveFromPosition)
	mux.HandleFunc("PUT /v1/lineup-sessions/{sessionID}/bench/{playerID}", handler.AddToBench)
	mux.HandleFunc("DELETE /v1/lineup-sessions/{sessionID}/bench/{playerID}", handler.RemoveFromBench)
	mux.HandleFunc("PUT /v1/lineup-sessions/{sessionID}/captain", handler.SetCaptain)
	mux.HandleFunc("DELETE /v1/lineup-sessions/{sessionID}/captain", handler.ClearCaptain)
	mux.HandleFunc("POST /v1/lineup-sessions/{sessionID}/auto-assign", handler.AutoAssign)
	mux.HandleFunc("POST /v1/lineup-sessions/{sessionID}/clear", handler.ClearAll)
	mux.HandleFunc("GET /v1/lineup-sessions/{sessionID}/validation", handler.ValidateSession)
	mux.HandleFunc("POST /v1/lineup-sessions/{sessionID}/submit", handler.Submit)
}

func registerSubmissionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}/lineup-submissions", handler.ListSubmissions)
}
