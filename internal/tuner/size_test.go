package tuner

import "testing"

func TestParseSizeB(t *testing.T) {
	cases := map[string]int{
		"/models/llama-7b.Q4_K_M.gguf":      7,
		"/models/llama-2-13b-chat.gguf":     13,
		"/models/mixtral-8.7B.gguf":         87, // decimal point stripped
		"/models/tinyllama-1.1b.Q8_0.gguf":  11,
		"/models/phi-0.5b.gguf":             5,
		"/models/llama-3.1-8b.gguf":         8,
		"/models/mistral.Q4_K_M.gguf":       0, // no size pattern
		"weights.bin":                       0,
	}
	for in, want := range cases {
		if got := ParseSizeB(in); got != want {
			t.Fatalf("ParseSizeB(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSizeBucket(t *testing.T) {
	cases := map[int]int{0: 0, 7: 0, 80: 0, 81: 1, 140: 1, 141: 2, 320: 2, 321: 3}
	for in, want := range cases {
		if got := sizeBucket(in); got != want {
			t.Fatalf("sizeBucket(%d) = %d, want %d", in, got, want)
		}
	}
}
