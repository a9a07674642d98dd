package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refreshToken)

	// Token-gated flows reached from emailed links; no session required.
	api.POST("/password/request", s.requestPasswordReset)
	api.PATCH("/password/change/:token", s.changePassword)

	api.GET("/pitches", s.listPitches)
	api.GET("/pitches/:id", s.getPitch)

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())

	protected.POST("/auth/logout", s.logout)

	protected.POST("/info/request", s.requestInfoChange)
	protected.PATCH("/info/change/:token", s.changeInfo)

	protected.GET("/favorites", s.listFavorites)
	protected.POST("/favorites/:pitch_id/toggle", s.toggleFavorite)
}
