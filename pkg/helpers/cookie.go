package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"

	refreshCookieTTL = 30 * 24 * time.Hour
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetSession stores the directory session pair. The refresh token outlives the
// access token so the client can renew after expiry.
func (m *Manager) SetSession(c *gin.Context, access string, aexp time.Time, refresh string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	if refresh != "" {
		c.SetCookie(RefreshCookie, refresh, int(refreshCookieTTL.Seconds()), "/", m.Domain, m.Secure, true)
	}
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
