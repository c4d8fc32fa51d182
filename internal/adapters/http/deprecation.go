package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LegacyPrefix is the path prefix of the pre-v1 API. Every route is also served
// under it until LegacySunset.
const LegacyPrefix = "/api"

// LegacySunset is when the /api/v1 aliases are removed.
var LegacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

const httpDate = "Mon, 02 Jan 2006 15:04:05 GMT"

// DeprecationMiddleware adds Deprecation, Sunset, Link and Warning headers to
// legacy responses. The successor is the same path without LegacyPrefix.
func DeprecationMiddleware(sunset time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// RFC 8594
		c.Set("Deprecation", "true")
		c.Set("Sunset", sunset.UTC().Format(httpDate))

		successor := strings.TrimPrefix(c.OriginalURL(), LegacyPrefix)
		c.Set(fiber.HeaderLink, fmt.Sprintf(`<%s>; rel="successor-version"`, successor))

		days := time.Until(sunset).Hours() / 24
		if days < 0 {
			days = 0
		}
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}
