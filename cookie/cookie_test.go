package cookie

import "testing"

func TestBuildDefaults(t *testing.T) {
	got, err := Build("theme", "dark", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := "theme=dark; Path=/; SameSite=Lax; HttpOnly"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}

func TestSameSiteNoneRequiresSecure(t *testing.T) {
	opts := DefaultOptions()
	opts.SameSite = SameSiteNone
	opts.Secure = false

	if _, err := Build("s", "v", opts); err == nil {
		t.Fatal("expected error for SameSite=None without Secure")
	}

	opts.Secure = true
	if _, err := Build("s", "v", opts); err != nil {
		t.Fatalf("unexpected error with Secure=true: %v", err)
	}
}

func TestParseMultipleCookies(t *testing.T) {
	header := `first=one; user=hello%20world; last=three`
	got, ok := Get(header, "user")
	if !ok || got != "hello world" {
		t.Fatalf("Get(user) = (%q, %v), want (hello world, true)", got, ok)
	}
	if got, _ := Get(header, "first"); got != "one" {
		t.Errorf("Get(first) = %q, want %q", got, "one")
	}
}

func TestParseValueDecoding(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"hello%20world", "hello world"},
		{"a%2Bb", "a+b"},
		{"1+1", "1+1"},       // literal '+' is not a space in cookies
		{"broken%2", "broken%2"}, // malformed escape kept as sent
	}
	for _, tt := range tests {
		got, ok := Get("k="+tt.value, "k")
		if !ok || got != tt.want {
			t.Errorf("Get(k=%s) = (%q, %v), want (%q, true)", tt.value, got, ok, tt.want)
		}
	}
}

func TestBuildRejectsEmptyName(t *testing.T) {
	if _, err := Build("", "v", DefaultOptions()); err == nil {
		t.Fatal("expected error for empty cookie name")
	}
}

func TestBuildNegativeMaxAgeExpiresImmediately(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxAge = -1

	got, err := Build("session", "", opts)
	if err != nil {
		t.Fatal(err)
	}
	want := "session=; Path=/; Max-Age=0; SameSite=Lax; HttpOnly"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}

func TestBuildPositiveMaxAge(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxAge = 3600

	got, err := Build("session", "abc", opts)
	if err != nil {
		t.Fatal(err)
	}
	want := "session=abc; Path=/; Max-Age=3600; SameSite=Lax; HttpOnly"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}
