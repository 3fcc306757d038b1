package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/campsite-app/utils"
)

// RequireRoles lets the request through only when the token role is one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	need := strings.Join(roles, " or ")

	return func(c *gin.Context) {
		userRole := c.GetString(CtxRole)
		if userRole == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if !allowed[userRole] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", need))
			c.Abort()
			return
		}

		c.Next()
	}
}
