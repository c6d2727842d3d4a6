// Package http wires the gin engine: middleware chain, resource routes
// under the OpenADR base path, and the unauthenticated token and health
// endpoints.
package http

import (
	"github.com/gin-gonic/gin"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/auth"
	"openadr/internal/infrastructure/notifier"
	"openadr/internal/shared/logger"

	"openadr/internal/interfaces/http/handlers"
	"openadr/internal/interfaces/http/middleware"
)

// DefaultBasePath is the URL prefix of the OpenADR resource endpoints.
const DefaultBasePath = "/openadr3/3.0.1"

// Stores bundles the object stores the router serves.
type Stores struct {
	Programs      storage.ProgramStore
	Events        storage.EventStore
	Reports       storage.ReportStore
	Vens          storage.VenStore
	Resources     storage.ResourceStore
	Subscriptions storage.SubscriptionStore
}

// Options configures the router.
type Options struct {
	// BasePath overrides DefaultBasePath.
	BasePath string
	// Mode is the gin mode: debug, release or test.
	Mode string
	// OAuthEnabled turns on the internal token endpoint.
	OAuthEnabled bool
	// ConnectionActive reports storage reachability for /health.
	ConnectionActive func() bool
}

// Router owns the configured gin engine.
type Router struct {
	engine   *gin.Engine
	basePath string
}

// NewRouter builds the engine with all routes registered.
func NewRouter(
	stores Stores,
	tokens *auth.TokenService,
	credentials *auth.CredentialStore,
	n *notifier.Notifier,
	opts Options,
	log logger.Interface,
) *Router {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	basePath := opts.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}
	connectionActive := opts.ConnectionActive
	if connectionActive == nil {
		connectionActive = func() bool { return true }
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Logging(log))

	programs := handlers.NewProgramHandler(stores.Programs, stores.Vens, n, log)
	events := handlers.NewEventHandler(stores.Events, stores.Vens, n, log)
	reports := handlers.NewReportHandler(stores.Reports, n, log)
	vens := handlers.NewVenHandler(stores.Vens, n, log)
	resources := handlers.NewResourceHandler(stores.Resources, n, log)
	subscriptions := handlers.NewSubscriptionHandler(stores.Subscriptions, n, log)
	oauth := handlers.NewOAuthHandler(opts.OAuthEnabled, credentials, tokens, log)
	health := handlers.NewHealthHandler(connectionActive)
	ws := handlers.NewWebsocketHandler(n, log)

	engine.GET("/health", health.Health)

	api := engine.Group(basePath)
	api.POST("/auth/token", oauth.Token)

	authed := api.Group("", middleware.Auth(tokens))

	programGroup := authed.Group("/programs")
	{
		programGroup.GET("", middleware.RequireReadTargets(), programs.List)
		programGroup.GET("/:programID", middleware.RequireReadTargets(), programs.Retrieve)
		programGroup.POST("", middleware.RequireScope(auth.ScopeWritePrograms), programs.Create)
		programGroup.PUT("/:programID", middleware.RequireScope(auth.ScopeWritePrograms), programs.Update)
		programGroup.DELETE("/:programID", middleware.RequireScope(auth.ScopeWritePrograms), programs.Delete)
	}

	eventGroup := authed.Group("/events")
	{
		eventGroup.GET("", middleware.RequireReadTargets(), events.List)
		eventGroup.GET("/:eventID", middleware.RequireReadTargets(), events.Retrieve)
		eventGroup.POST("", middleware.RequireScope(auth.ScopeWriteEvents), events.Create)
		eventGroup.PUT("/:eventID", middleware.RequireScope(auth.ScopeWriteEvents), events.Update)
		eventGroup.DELETE("/:eventID", middleware.RequireScope(auth.ScopeWriteEvents), events.Delete)
	}

	reportGroup := authed.Group("/reports")
	{
		reportGroup.GET("", middleware.RequireReadVenObjects(), reports.List)
		reportGroup.GET("/:reportID", middleware.RequireReadVenObjects(), reports.Retrieve)
		reportGroup.POST("", middleware.RequireScope(auth.ScopeWriteReports), reports.Create)
		reportGroup.PUT("/:reportID", middleware.RequireScope(auth.ScopeWriteReports), reports.Update)
		reportGroup.DELETE("/:reportID", middleware.RequireScope(auth.ScopeWriteReports), reports.Delete)
	}

	venGroup := authed.Group("/vens")
	{
		venGroup.GET("", middleware.RequireReadVenObjects(), vens.List)
		venGroup.GET("/:venID", middleware.RequireReadVenObjects(), vens.Retrieve)
		venGroup.POST("", middleware.RequireScope(auth.ScopeWriteVens), vens.Create)
		venGroup.PUT("/:venID", middleware.RequireScope(auth.ScopeWriteVens), vens.Update)
		venGroup.DELETE("/:venID", middleware.RequireScope(auth.ScopeWriteVens), vens.Delete)

		venGroup.GET("/:venID/resources", middleware.RequireReadVenObjects(), resources.List)
		venGroup.GET("/:venID/resources/:resourceID", middleware.RequireReadVenObjects(), resources.Retrieve)
		venGroup.POST("/:venID/resources", middleware.RequireScope(auth.ScopeWriteVens), resources.Create)
		venGroup.PUT("/:venID/resources/:resourceID", middleware.RequireScope(auth.ScopeWriteVens), resources.Update)
		venGroup.DELETE("/:venID/resources/:resourceID", middleware.RequireScope(auth.ScopeWriteVens), resources.Delete)
	}

	subscriptionGroup := authed.Group("/subscriptions")
	{
		subscriptionGroup.GET("", middleware.RequireReadVenObjects(), subscriptions.List)
		subscriptionGroup.GET("/:subscriptionID", middleware.RequireReadVenObjects(), subscriptions.Retrieve)
		subscriptionGroup.POST("", middleware.RequireScope(auth.ScopeWriteSubscriptions), subscriptions.Create)
		subscriptionGroup.PUT("/:subscriptionID", middleware.RequireScope(auth.ScopeWriteSubscriptions), subscriptions.Update)
		subscriptionGroup.DELETE("/:subscriptionID", middleware.RequireScope(auth.ScopeWriteSubscriptions), subscriptions.Delete)
	}

	authed.GET("/notifiers/websocket", middleware.RequireRead(), ws.Subscribe)

	return &Router{engine: engine, basePath: basePath}
}

// Engine exposes the gin engine for the HTTP server and for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// BasePath returns the configured URL prefix.
func (r *Router) BasePath() string {
	return r.basePath
}
