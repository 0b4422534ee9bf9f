package middleware

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
)

// IPAllowlist rejects clients outside the configured CIDR ranges. The
// default configuration allows everything, matching the campus deployment.
func IPAllowlist(allowed []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ipAllowed(c.ClientIP(), allowed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access from this IP address is not allowed"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func ipAllowed(clientIP string, allowed []netip.Prefix) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range allowed {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
