package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/steeze-dns/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth    *auth.Middleware
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
}
