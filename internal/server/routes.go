package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/gabinete/internal/api/v1"
	"github.com/gosuda/gabinete/internal/api/ws"
	"github.com/gosuda/gabinete/internal/store/postgres"
)

func registerPublicRoutes(api huma.API, store *postgres.Store, svc services) {
	v1.RegisterAuthRoutes(api, svc.auth)
	v1.RegisterPublicRoutes(api, store)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, uploader v1.Uploader, bucket string, svc services) {
	v1.RegisterTenantRoutes(api, store)
	v1.RegisterProfileRoutes(api, store)
	v1.RegisterCategoryRoutes(api, store)
	v1.RegisterEventRoutes(api, store)
	v1.RegisterTicketRoutes(api, svc.tickets)
	v1.RegisterBoardRoutes(api, svc.tickets)
	v1.RegisterNotificationRoutes(api, svc.notify)
	v1.RegisterPreferenceRoutes(api, svc.prefs)
	v1.RegisterUploadRoutes(api, uploader, bucket)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board", hub.ServeBoard)
	r.Get("/notifications", hub.ServeNotifications)
	r.Get("/preferences", hub.ServePreferences)
}
