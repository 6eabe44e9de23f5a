package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupRoutes enforces the api routes. Every endpoint the companion apps
// call sits behind the protected chain; only the liveness pair is open.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()

	router.GET("/", m.open.Chain(api.Index))
	router.GET("/status", m.open.Chain(api.Status))

	router.GET("/books", m.protected.Chain(api.GetAllBooks))
	router.POST("/books", m.protected.Chain(api.CreateBook))
	router.PUT("/books/:id", m.protected.Chain(api.UpdateBook))
	router.DELETE("/books/:id", m.protected.Chain(api.DeleteOneBook))
	router.POST("/save_all", m.protected.Chain(api.SaveAllBooks))
	router.GET("/backup", m.protected.Chain(api.BackupBooks))
	router.POST("/upload_ebook", m.protected.Chain(api.UploadEbook))
	router.GET("/oauth_start", m.protected.Chain(api.OAuthStart))
	router.GET("/oauth_finish", m.protected.Chain(api.OAuthFinish))

	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	return router
}
