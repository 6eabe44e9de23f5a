package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/ops/configs", m.protected.Chain(api.GetConfigs))
	router.GET("/ops/stats", m.protected.Chain(api.GetStatistics))
	router.GET("/ops/maintenance", m.protected.Chain(api.Maintenance))
	router.GET("/ops/debug/vars", m.protected.Chain(GetMemStats))
	router.GET("/ops/debug/gc", m.protected.Chain(api.RunGC))
	router.GET("/ops/debug/fos", m.protected.Chain(api.FreeOSMemory))

	if api.config.ProfilerEnable {
		router.GET("/ops/debug/pprof/", m.protected.Chain(api.OpsHandlerWrapper(http.HandlerFunc(pprof.Index))))
		router.GET("/ops/debug/pprof/profile", m.protected.Chain(api.GetCPUProfile))
		router.GET("/ops/debug/pprof/trace", m.protected.Chain(api.GetTraceProfile))
		router.GET("/ops/debug/pprof/symbol", m.protected.Chain(api.GetSymbol))
		router.GET("/ops/debug/pprof/cmdline", m.protected.Chain(api.GetCmdLine))
		router.GET("/ops/debug/pprof/heap", m.protected.Chain(api.OpsHandlerWrapper(pprof.Handler("heap"))))
		router.GET("/ops/debug/pprof/allocs", m.protected.Chain(api.OpsHandlerWrapper(pprof.Handler("allocs"))))
		router.GET("/ops/debug/pprof/goroutine", m.protected.Chain(api.OpsHandlerWrapper(pprof.Handler("goroutine"))))
		router.GET("/ops/debug/pprof/block", m.protected.Chain(api.OpsHandlerWrapper(pprof.Handler("block"))))
		router.GET("/ops/debug/pprof/mutex", m.protected.Chain(api.OpsHandlerWrapper(pprof.Handler("mutex"))))
	}

	return router
}
