package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, p.Name, "default")
	assert.Equal(t, len(p.OneGram), 3)
	assert.Equal(t, len(p.FourGram), 10)
	assert.Contains(t, p.CodeSegments, ".text:")
	assert.Contains(t, p.CodeSegments, "UPX1:")
}

func TestLoadProfile(t *testing.T) {
	tempFile, err := os.CreateTemp("", "profile.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tempFile.Name())

	content := `name: upx-only
code_segments:
  - "UPX0:"
  - "UPX1:"
one_gram:
  - "00"
  - "90"
`
	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tempFile.Close()

	p, err := LoadProfile(tempFile.Name())
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	assert.Equal(t, p.Name, "upx-only")
	assert.Equal(t, p.CodeSegments, []string{"UPX0:", "UPX1:"})
	assert.Equal(t, p.OneGram, []string{"00", "90"})
	// Omitted fields fall back to defaults.
	assert.Equal(t, p.FourGram, Default().FourGram)
}

func TestLoadProfileInvalidGram(t *testing.T) {
	tempFile, err := os.CreateTemp("", "profile.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tempFile.Name())

	content := `name: broken
four_gram:
  - "0400"
`
	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tempFile.Close()

	_, err = LoadProfile(tempFile.Name())
	assert.Error(t, err)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile("does-not-exist.yaml")
	assert.Error(t, err)
}
