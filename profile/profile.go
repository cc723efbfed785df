package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile configures how a disassembly listing is interpreted: which
// segment prefixes count as code and which byte grams are tallied into
// block features.
type Profile struct {
	Name         string   `yaml:"name"`
	CodeSegments []string `yaml:"code_segments"`
	OneGram      []string `yaml:"one_gram"`
	FourGram     []string `yaml:"four_gram"`
}

// Default returns the profile used when none is supplied. The segment
// prefixes cover section names observed across packed and unpacked
// samples, including names invented by packers.
func Default() *Profile {
	return &Profile{
		Name: "default",
		CodeSegments: []string{
			".text:", "CODE:", "UPX1:", "seg000:", "qmoyiu:",
			".UfPOkc:", ".brick:", ".icode:", "seg001:",
			".Much:", "iuagwws:", ".idata:", ".edata:",
			".IqR:", ".data:", ".bss:", ".rsrc:",
			".tls:", ".reloc:", ".unpack:", "_1:", ".Upack:", ".mF:",
		},
		OneGram: []string{"00", "FF", "??"},
		FourGram: []string{
			"????????", "04000000", "5DC30000", "F0F0F001", "00100000",
			"00F0F000", "0D2F0600", "5DC38BFF", "8BFF558B", "840D2F06",
		},
	}
}

// LoadProfile loads a profile from a YAML file. Fields left empty fall
// back to their defaults.
func LoadProfile(filename string) (*Profile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer file.Close()

	var profile Profile
	if err := yaml.NewDecoder(file).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	def := Default()
	if profile.Name == "" {
		profile.Name = def.Name
	}
	if len(profile.CodeSegments) == 0 {
		profile.CodeSegments = def.CodeSegments
	}
	if len(profile.OneGram) == 0 {
		profile.OneGram = def.OneGram
	}
	if len(profile.FourGram) == 0 {
		profile.FourGram = def.FourGram
	}

	if err := profile.validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *Profile) validate() error {
	for _, g := range p.OneGram {
		if len(g) != 2 {
			return fmt.Errorf("profile %s: one-gram %q must be 2 characters", p.Name, g)
		}
	}
	for _, g := range p.FourGram {
		if len(g) != 8 {
			return fmt.Errorf("profile %s: four-gram %q must be 8 characters", p.Name, g)
		}
	}
	return nil
}
