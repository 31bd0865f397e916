package domain

import "testing"

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in     string
		want   Language
		wantOK bool
	}{
		{"ko", Korean, true},
		{"en", English, true},
		{"ja", Japanese, true},
		{"zh", Chinese, true},
		{"fr", "", false},
		{"KO", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseLanguage(tc.in)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseLanguage(%q) = %q, %v", tc.in, got, ok)
			}
		})
	}
}

func TestLocalizedGet(t *testing.T) {
	l := Localized{KO: "궁", EN: "palace", JA: "宮", ZH: "宫"}

	if got := l.Get(Japanese); got != "宮" {
		t.Errorf("Get(ja) = %q", got)
	}
	if got := (Localized{}).Get(English); got != "" {
		t.Errorf("empty Get(en) = %q", got)
	}
}

func TestLocalizedHandlesResolve(t *testing.T) {
	tests := []struct {
		name    string
		handles LocalizedHandles
		lang    Language
		want    Handle
		wantOK  bool
	}{
		{"requested_present", LocalizedHandles{EN: "h-en", KO: "h-ko"}, English, "h-en", true},
		{"falls_back_to_ko_first", LocalizedHandles{KO: "h-ko", ZH: "h-zh"}, English, "h-ko", true},
		{"falls_back_past_ko", LocalizedHandles{ZH: "h-zh"}, Japanese, "h-zh", true},
		{"all_absent", LocalizedHandles{}, Korean, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.handles.Resolve(tc.lang)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Resolve(%s) = %q, %v, want %q, %v", tc.lang, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
