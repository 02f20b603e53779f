package httpapi

import (
	"net/http"

	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerFormationRoutes(mux, handler)
	registerSessionRoutes(mux, handler)
	registerSubmissionRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, RequestIdentity(recoverPanic(logger, mux)))))
}
