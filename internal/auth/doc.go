// Package auth authenticates authors and guards routes.
//
// Authors log in with email and password and receive a PASETO v4.local
// access token whose subject is the author ID:
//
//	tokens, _ := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL,
//	    cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience)
//	service := auth.NewService(authorsRepo, tokens)
//	mw := auth.NewMiddleware(service)
//	router.GET("/authors/me/", mw.RequireAuthor(), handler)
//
// Inside handlers:
//
//	authorID := auth.GetAuthorID(c)
//
// Login attempts are throttled per client IP by KeyedRateLimiter.
//
// The demo cookie routes use SessionManager (scs) guarded by CSRFMiddleware
// (gorilla/csrf); the rest of the API is stateless.
package auth
