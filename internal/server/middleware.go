package server

import (
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// localClientsOnly rejects peers that are not on this machine. The server
// acts with a single backend session, so anyone who can reach it is that user.
func (s *Server) localClientsOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.Web.AllowRemote || isLoopback(c.Request.RemoteAddr) {
			c.Next()
			return
		}

		s.logger.Warn().
			Str("remote_addr", c.Request.RemoteAddr).
			Msg("Rejected non-local client (set WEB_ALLOW_REMOTE=true to allow)")
		c.AbortWithStatus(http.StatusForbidden)
	}
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// corsMiddleware aborts requests whose Origin is neither this server nor
// one of WEB_ALLOWED_ORIGINS
func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowed := s.config.Web.AllowedOrigins
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return slices.Contains(allowed, origin)
		},
		AllowMethods:     []string{"GET", "POST", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// sameSiteForms rejects form posts a browser marked as coming from another
// site, which covers clients that omit Origin
func (s *Server) sameSiteForms() gin.HandlerFunc {
	allowed := s.config.Web.AllowedOrigins
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		switch c.GetHeader("Sec-Fetch-Site") {
		case "", "same-origin", "none":
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" && slices.Contains(allowed, origin) {
			c.Next()
			return
		}

		s.logger.Warn().
			Str("path", c.Request.URL.Path).
			Str("sec_fetch_site", c.GetHeader("Sec-Fetch-Site")).
			Msg("Rejected cross-site form post")
		c.AbortWithStatus(http.StatusForbidden)
	}
}
