package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	Token      string
	TokenFile  string
	Output     string
	MaxRetries int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  "http://localhost:8080",
		TokenFile:  defaultTokenFile(),
		Output:     "text",
		MaxRetries: 3,
	}
}

// bindEnv lets SCORECTL_* environment variables fill in flags that were not set
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name, "SCORECTL_"+strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")))
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// The token file maps server URLs to owner tokens, so pointing the CLI at
// another server never sends it a token it did not sign. Files written by
// older versions hold a bare token, which is used for any server.
type tokenFile map[string]string

func serverKey(serverURL string) string {
	return strings.TrimSuffix(serverURL, "/")
}

func (c *Config) readTokenFile() (tokenFile, string, error) {
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return tokenFile{}, "", nil
		}
		return nil, "", err
	}

	tokens := tokenFile{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return tokenFile{}, strings.TrimSpace(string(data)), nil
	}
	return tokens, "", nil
}

// LoadToken loads the token for the configured server unless one was given
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	tokens, bare, err := c.readTokenFile()
	if err != nil {
		return err
	}
	if token, ok := tokens[serverKey(c.ServerURL)]; ok {
		c.Token = token
		return nil
	}
	c.Token = bare
	return nil
}

// SaveToken records the token for the configured server, keeping the others
func (c *Config) SaveToken(token string) error {
	c.Token = token

	tokens, _, err := c.readTokenFile()
	if err != nil {
		return err
	}
	tokens[serverKey(c.ServerURL)] = token

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scorectl/token"
	}
	return filepath.Join(home, ".scorectl", "token")
}
