package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	// The signup form is the only unauthenticated write endpoint, so it alone
	// carries the rate limiter.
	s.echo.POST("/subscriptions", s.subscribe, s.middleware.RateLimit.Handler())
	s.echo.GET("/subscriptions/confirm", s.confirm)
}
