package logger

import "strings"

// RedactEmail masks a stakeholder email address for safe logging.
// "dana.okafor@acme.com" → "da***@acme.com"
// Short local parts (≤2 chars) are fully masked: "ab@acme.com" → "***@acme.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactName masks a person's name down to initials for safe logging.
// "Dana Okafor" → "D. O."
func RedactName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	initials := make([]string, 0, len(fields))
	for _, f := range fields {
		initials = append(initials, string([]rune(f)[0])+".")
	}
	return strings.Join(initials, " ")
}
