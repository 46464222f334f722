package services

import (
	"regexp"
	"strings"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

// Label patterns: "label:" or "label：" followed by the rest of the line.
// Whitespace after the colon must not cross into the next line, so an empty
// value does not swallow the following label.
var fieldPatterns = map[string]*regexp.Regexp{
	models.FieldChannel: regexp.MustCompile(`渠道[:：][ \t]*(.+)`),
	models.FieldSource:  regexp.MustCompile(`来源[:：][ \t]*(.+)`),
	models.FieldPhone:   regexp.MustCompile(`电话[:：][ \t]*(.+)`),
	models.FieldWechat:  regexp.MustCompile(`微信[:：][ \t]*(.+)`),
}

// ParseCustomerInfo extracts labeled intake fields from a chat message.
// Only labels actually present in the text appear in the result; an empty
// map means the message did not follow the template.
func ParseCustomerInfo(text string) map[string]string {
	result := make(map[string]string)
	for field, pattern := range fieldPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value := strings.TrimSpace(match[1])
		if value != "" {
			result[field] = value
		}
	}
	return result
}
