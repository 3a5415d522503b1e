package middleware

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitize strips markup from every string of a JSON request body. Fields
// named in skip, such as URLs, are left untouched.
func Sanitize(skip ...string) fiber.Handler {
	policy := bluemonday.StrictPolicy()
	skipped := make(map[string]bool, len(skip))
	for _, k := range skip {
		skipped[k] = true
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return c.Next()
		}
		body := c.Body()
		if len(body) == 0 {
			return c.Next()
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		for key, value := range payload {
			if skipped[key] {
				continue
			}
			payload[key] = sanitizeValue(policy, value)
		}

		sanitized, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		c.Request().SetBody(sanitized)
		return c.Next()
	}
}

func sanitizeValue(policy *bluemonday.Policy, value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(policy.Sanitize(v))
	case []interface{}:
		for i := range v {
			v[i] = sanitizeValue(policy, v[i])
		}
		return v
	case map[string]interface{}:
		for k := range v {
			v[k] = sanitizeValue(policy, v[k])
		}
		return v
	}
	return value
}
