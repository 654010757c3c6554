package cookie

import (
	"github.com/gin-gonic/gin"
)

// AccessTokenCookieName is the cookie set by the storefront's identity provider.
const AccessTokenCookieName = "access_token"

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}
