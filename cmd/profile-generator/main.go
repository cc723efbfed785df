package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/asmlab/acfg/profile"
)

func main() {
	output := flag.String("output", "", "Output file for the generated profile (optional)")
	name := flag.String("name", "", "Name recorded in the generated profile (optional)")

	flag.Parse()

	prof := profile.Default()
	if *name != "" {
		prof.Name = *name
	}

	data, err := yaml.Marshal(prof)
	if err != nil {
		fmt.Printf("Error marshaling profile: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		err = os.WriteFile(*output, data, 0644)
		if err != nil {
			fmt.Printf("Error writing to output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Profile written to %s\n", *output)
	} else {
		fmt.Print(string(data))
	}
}
