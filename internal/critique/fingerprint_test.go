package critique

import "testing"

func TestFingerprintStable(t *testing.T) {
	text := "第一章　雨夜\n林晚推開門，風雪灌進來。"
	got := Fingerprint(text)
	if got != Fingerprint(text) {
		t.Fatalf("expected stable fingerprint, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("fingerprint contains non base-36 character: %c", ch)
		}
	}
}

func TestFingerprintDetectsEdits(t *testing.T) {
	text := "他沉默了很久。"
	if Fingerprint(text) == Fingerprint(text+"x") {
		t.Fatalf("expected appended character to change fingerprint")
	}
}

func TestFingerprintKnownValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "0"},
		{name: "single char", in: "a", want: "2p"},
		{name: "two chars", in: "ab", want: "2e9"},
		{name: "positive hash", in: "hello world", want: "to5x38"},
		{name: "negative hash", in: "hello world!", want: "3ld7vn"},
		{name: "cjk", in: "林晚推開門", want: "7tdzeu"},
		{name: "surrogate pair", in: "𠮷", want: "120fp"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.in); got != tt.want {
				t.Fatalf("Fingerprint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasChanged(t *testing.T) {
	text := "章節內容"
	stored := Fingerprint(text)

	tests := []struct {
		name    string
		current string
		stored  string
		want    bool
	}{
		{name: "no stored fingerprint", current: text, stored: "", want: true},
		{name: "no stored fingerprint empty text", current: "", stored: "", want: true},
		{name: "empty text", current: "", stored: stored, want: false},
		{name: "unchanged", current: text, stored: stored, want: false},
		{name: "edited", current: text + "。", stored: stored, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanged(tt.current, tt.stored); got != tt.want {
				t.Fatalf("HasChanged(%q, %q) = %v, want %v", tt.current, tt.stored, got, tt.want)
			}
		})
	}
}
