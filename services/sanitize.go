package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var contentPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips markup that user generated content may not carry, such as scripts and
// event handlers.
func SanitizeContent(content string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(content))
}
