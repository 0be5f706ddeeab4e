package config

import "fmt"

// DefaultServer is used when no profile names a server.
const DefaultServer = "http://127.0.0.1:8000"

// CLIConfig is the configuration for xlremote-cli.
type CLIConfig struct {
	DefaultOutput  string             `yaml:"default_output"` // table, json, yaml
	CurrentProfile string             `yaml:"current_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile stores how to reach one server.
type Profile struct {
	Server string `yaml:"server"`
	// Token is sent as the Authorization header, e.g. "Bearer s3cret".
	Token    string `yaml:"token,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
	// ClientVersion is sent in snapshots built from local files.
	ClientVersion string `yaml:"client_version,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultOutput: "table",
		Profiles:      make(map[string]Profile),
	}
}

// Profile returns the named profile, or the current one for an empty name.
// Without any current profile it returns a profile for DefaultServer.
func (c *CLIConfig) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return Profile{Server: DefaultServer}, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	if p.Server == "" {
		p.Server = DefaultServer
	}
	return p, nil
}
