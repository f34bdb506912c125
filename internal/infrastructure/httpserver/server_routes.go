package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.Use(s.middleware.JWT.RequireJWT())

	discord := api.Group("/discord")
	discord.GET("/channels", s.listDiscordChannels)
	discord.GET("/channels/:id", s.getDiscordChannel)

	templates := api.Group("/templates")
	templates.GET("", s.listTemplates)
	templates.POST("", s.createTemplate)
	templates.GET("/:id", s.getTemplate)
	templates.PUT("/:id", s.updateTemplate)
	templates.DELETE("/:id", s.deleteTemplate)

	pings := api.Group("/pings")
	pings.GET("", s.listPings)
	pings.POST("", s.sendPing)
	pings.GET("/:id", s.getPing)
	pings.DELETE("/:id", s.deletePing)
}
