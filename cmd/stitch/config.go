package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of the command line flags. Flags given on the
// command line are added to the ones read from the file.
type fileConfig struct {
	Sources []struct {
		Name   string `yaml:"name"`
		Schema string `yaml:"schema"`
		URL    string `yaml:"url"`
	} `yaml:"sources"`
	Renames        []string `yaml:"renames"`
	Headers        []string `yaml:"headers"`
	DropRootFields []string `yaml:"dropRootFields"`
	StripBindings  bool     `yaml:"stripBindings"`
}

func loadConfig(path string) (*fileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &config, nil
}

// apply prepends the file settings to opts
func (c *fileConfig) apply(opts *options) error {
	var schemas, urls []string
	for _, source := range c.Sources {
		switch {
		case source.Schema != "" && source.URL != "":
			return fmt.Errorf("source %s sets both schema and url", source.Name)
		case source.Schema != "":
			schemas = append(schemas, source.Name+"="+source.Schema)
		case source.URL != "":
			urls = append(urls, source.Name+"="+source.URL)
		default:
			return fmt.Errorf("source %s sets neither schema nor url", source.Name)
		}
	}

	opts.schemas = append(schemas, opts.schemas...)
	opts.urls = append(urls, opts.urls...)
	opts.renames = append(append([]string{}, c.Renames...), opts.renames...)
	opts.headers = append(append([]string{}, c.Headers...), opts.headers...)
	opts.dropFields = append(append([]string{}, c.DropRootFields...), opts.dropFields...)
	opts.stripBindings = opts.stripBindings || c.StripBindings

	return nil
}
