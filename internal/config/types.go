package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Connection holds the vSphere endpoint settings.
type Connection struct {
	URL        string `mapstructure:"url" yaml:"url"`
	Username   string `mapstructure:"username" yaml:"username"`
	Password   string `mapstructure:"password" yaml:"password"`
	Insecure   bool   `mapstructure:"insecure" yaml:"insecure,omitempty"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter,omitempty"` // Empty uses the default datacenter
	CAFile     string `mapstructure:"ca-file" yaml:"ca-file,omitempty"`       // PEM bundle used when not insecure
}

// Validate checks the connection settings for errors.
// Does not contact vCenter - only checks structure.
func (c *Connection) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}

	u, err := c.parseURL()
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", c.URL)
	}

	if c.Principal() == "" {
		return fmt.Errorf("username is required")
	}

	if c.CAFile != "" {
		if c.Insecure {
			return fmt.Errorf("ca-file cannot be combined with insecure")
		}
		if _, err := os.Stat(c.CAFile); err != nil {
			return fmt.Errorf("ca-file %q: %w", c.CAFile, err)
		}
	}

	return nil
}

// Principal returns the login user: Username, or the user embedded in URL
// when Username is empty.
func (c *Connection) Principal() string {
	if c.Username != "" {
		return c.Username
	}
	u, err := c.parseURL()
	if err != nil || u.User == nil {
		return ""
	}
	return u.User.Username()
}

func (c *Connection) parseURL() (*url.URL, error) {
	raw := c.URL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return url.Parse(raw)
}

// Redacted returns a copy safe to print.
func (c Connection) Redacted() Connection {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
