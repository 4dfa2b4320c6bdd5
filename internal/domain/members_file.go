package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// membersFile is the YAML layout of a custom member list:
//
//	members:
//	  - key: yujin
//	    display_name: "安俞真"
type membersFile struct {
	Members []Member `yaml:"members"`
}

// ParseRegistryYAML builds a registry from a YAML member list. Order in the
// file is the label order.
func ParseRegistryYAML(data []byte) (*Registry, error) {
	var file membersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse members: %w", err)
	}
	return NewRegistry(file.Members)
}

// LoadRegistry reads a YAML member list from path
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read members file: %w", err)
	}
	return ParseRegistryYAML(data)
}
