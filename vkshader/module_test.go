package vkshader

import "testing"

func TestWordsOfReinterpretsLittleEndian(t *testing.T) {
	code := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	words := wordsOf(code)
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("words[0] = 0x%08X, want 0x07230203 (the SPIR-V magic number)", words[0])
	}
	if words[1] != 0x00010000 {
		t.Errorf("words[1] = 0x%08X, want 0x00010000", words[1])
	}
}
