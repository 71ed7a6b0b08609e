package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestResolveModelFile(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "llama-7b.Q4_K_M.gguf")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ResolveModelFile(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != p {
		t.Fatalf("expected %q, got %q", p, got)
	}
	if _, err := ResolveModelFile(filepath.Join(d, "missing.gguf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := ResolveModelFile(d); err == nil {
		t.Fatalf("expected error for directory")
	}
	notGGUF := filepath.Join(d, "weights.bin")
	if err := os.WriteFile(notGGUF, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ResolveModelFile(notGGUF); err == nil {
		t.Fatalf("expected error for non-gguf file")
	}
}

func TestAliasFromPath(t *testing.T) {
	cases := map[string]string{
		"/models/Llama-7B.Q4_K_M.gguf":  "llama-7b.q4_k_m",
		"/models/mixtral 8x7b.gguf":     "mixtral-8x7b",
		"~/m/phi-2.gguf":                "phi-2",
	}
	for in, want := range cases {
		if got := AliasFromPath(in); got != want {
			t.Fatalf("AliasFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
