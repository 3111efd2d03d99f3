package sites

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Sites map[string]Site `yaml:"sites"`
}

// LoadFile builds a registry from a YAML document of the form
//
//	sites:
//	  example.com:
//	    name: Example
//	    base_url: https://example.com
//	    selectors: {container: .item, name: .title, price: .price, link: a}
//	    default_paths: [/laptops]
//	    categories: {laptop: /laptops}
func LoadFile(path string) (*Registry, error) {
	const opn = "sites.LoadFile"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", opn, path, err)
	}

	var doc fileDocument
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to decode %s: %w", opn, path, err)
	}
	if len(doc.Sites) == 0 {
		return nil, fmt.Errorf("%s: %s defines no sites", opn, path)
	}

	return NewRegistry(doc.Sites)
}
