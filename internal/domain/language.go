package domain

// Language identifies one of the serviced content languages.
type Language string

const (
	Korean   Language = "ko"
	English  Language = "en"
	Japanese Language = "ja"
	Chinese  Language = "zh"
)

// Languages lists every serviced language in fallback priority order.
var Languages = []Language{Korean, English, Japanese, Chinese}

// ParseLanguage validates a language code from an external caller.
func ParseLanguage(s string) (Language, bool) {
	for _, lang := range Languages {
		if string(lang) == s {
			return lang, true
		}
	}
	return "", false
}

// Localized holds one text value per serviced language.
// Empty string means the translation is absent.
type Localized struct {
	KO string `json:"ko,omitempty"`
	EN string `json:"en,omitempty"`
	JA string `json:"ja,omitempty"`
	ZH string `json:"zh,omitempty"`
}

// Get returns the value for the requested language.
func (l Localized) Get(lang Language) string {
	switch lang {
	case Korean:
		return l.KO
	case English:
		return l.EN
	case Japanese:
		return l.JA
	case Chinese:
		return l.ZH
	}
	return ""
}

// LocalizedHandles holds one optional media handle per serviced language.
type LocalizedHandles struct {
	KO Handle
	EN Handle
	JA Handle
	ZH Handle
}

// Get returns the handle for the requested language, zero if absent.
func (h LocalizedHandles) Get(lang Language) Handle {
	switch lang {
	case Korean:
		return h.KO
	case English:
		return h.EN
	case Japanese:
		return h.JA
	case Chinese:
		return h.ZH
	}
	return ""
}

// Resolve returns the handle for the requested language, falling back
// across the remaining languages in priority order when it is absent.
func (h LocalizedHandles) Resolve(lang Language) (Handle, bool) {
	if v := h.Get(lang); v != "" {
		return v, true
	}
	for _, fallback := range Languages {
		if v := h.Get(fallback); v != "" {
			return v, true
		}
	}
	return "", false
}
