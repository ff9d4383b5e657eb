// redact — маскирование чувствительных значений в логах.
package redact

import "strings"

// Email маскирует локальную часть адреса, оставляя домен для диагностики:
// "aidos@dsml.kz" → "ai***@dsml.kz". Строка без '@' маскируется целиком.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || domain == "" {
		return "***"
	}

	if len(local) <= 2 {
		return "***@" + domain
	}

	return local[:2] + "***@" + domain
}

// Token — плейсхолдер вместо любого токена.
func Token() string { return "[REDACTED_TOKEN]" }
