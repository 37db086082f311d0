package translate

import "strings"

// Language is a translation target offered to users.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the target languages in display order.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "hi", Name: "Hindi"},
	{Code: "fr", Name: "French"},
	{Code: "es", Name: "Spanish"},
	{Code: "de", Name: "German"},
	{Code: "zh-cn", Name: "Chinese"},
}

// IsSupported reports whether code is a supported target.
func IsSupported(code string) bool {
	return Name(code) != ""
}

// Name returns the display name of a supported code, or "".
func Name(code string) string {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return ""
}

// GoogleCode converts a target code to the casing Google's web endpoints
// expect, e.g. "zh-cn" to "zh-CN".
func GoogleCode(code string) string {
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i] + "-" + strings.ToUpper(code[i+1:])
	}
	return code
}

// promptName is how a target is named in LLM prompts.
func promptName(code string) string {
	if code == "zh-cn" {
		return "Simplified Chinese"
	}
	if name := Name(code); name != "" {
		return name
	}
	return code
}
