package utils

import "regexp"

var secretQueryRegex = regexp.MustCompile(`(?i)([?&](?:client_secret|token|access_token)=)[^&#]*`)

// MaskSecret keeps the first four characters of s and hides the rest.
// Values of eight characters or fewer are hidden entirely.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***"
}

// RedactQuery hides credential-bearing query parameters in a URL string
// without otherwise touching it.
func RedactQuery(rawURL string) string {
	return secretQueryRegex.ReplaceAllString(rawURL, "${1}***")
}
