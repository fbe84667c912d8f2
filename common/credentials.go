package common

import (
	"context"
	"fmt"
	"sync"

	ilo_vault "github.com/comcast/hpilo-exporter/vault"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

var (
	IloCreds = IloCredentials{
		Creds: make(map[string]*Credential),
	}

	profiles = make(map[string]Profile)

	log *zap.Logger
)

// IloCredentials caches resolved logins per target so a collect cycle
// does not hit vault once per request kind.
type IloCredentials struct {
	mu    sync.Mutex
	Creds map[string]*Credential
	Vault *ilo_vault.Vault
}

type Credential struct {
	User string
	Pass string
}

// Profile describes where a target's login secret lives in vault and
// which secret fields carry the username and password.
type Profile struct {
	Name          string `yaml:"name" json:"name"`
	MountPath     string `yaml:"mountPath" json:"mountPath"`
	Path          string `yaml:"path" json:"path"`
	UserField     string `yaml:"userField" json:"userField"`
	PasswordField string `yaml:"passwordField" json:"passwordField"`
	SecretName    string `yaml:"secretName,omitempty" json:"secretName,omitempty"`
}

func (p Profile) secretProperties() *ilo_vault.SecretProperties {
	return &ilo_vault.SecretProperties{
		MountPath:  p.MountPath,
		Path:       p.Path,
		SecretName: p.SecretName,
	}
}

var defaultProfile = Profile{
	Name:          "default",
	MountPath:     "kv2",
	UserField:     "user",
	PasswordField: "password",
}

// GetProfile resolves a named credential profile, falling back to the
// default kv2 layout for unnamed or unknown profiles.
func GetProfile(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return defaultProfile
}

func (c *IloCredentials) Get(key string) (*Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.Creds[key]
	return val, ok
}

func (c *IloCredentials) Set(key string, value *Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Creds[key] = value
}

func (c *IloCredentials) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Creds, key)
}

func (c *IloCredentials) GetCredentials(ctx context.Context, profile, target string) (*Credential, error) {
	var credential *Credential
	var ok bool
	var user, pass string

	log = zap.L()

	if c.Vault == nil {
		log.Error("issue retrieving credentials from vault using target "+target, zap.Error(fmt.Errorf("vault client not configured")))
		return credential, fmt.Errorf("issue retrieving credentials from vault using target: %s", target)
	}

	props := GetProfile(profile)
	secret, err := c.Vault.GetKVSecret(ctx, props.secretProperties(), target)
	if err != nil {
		log.Error("issue retrieving credentials from vault using target "+target, zap.Error(err))
		return credential, fmt.Errorf("issue retrieving credentials from vault using target: %s", target)
	}

	if user, ok = secret.Data[props.UserField].(string); !ok {
		return credential, fmt.Errorf("the secret retrieved from vault using target %s is missing the %q field", target, props.UserField)
	}

	if pass, ok = secret.Data[props.PasswordField].(string); !ok {
		return credential, fmt.Errorf("the secret retrieved from vault using target %s is missing the %q field", target, props.PasswordField)
	}
	credential = &Credential{
		User: user,
		Pass: pass,
	}

	return credential, nil
}

type credentialProfiles struct {
	Profiles []Profile `yaml:"profiles" json:"profiles"`
}

type profilesValue struct{}

func (p *profilesValue) Set(value string) error {
	var parsed credentialProfiles
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return fmt.Errorf("error parsing credential profiles - %w", err)
	}
	for _, prof := range parsed.Profiles {
		if prof.Name == "" {
			return fmt.Errorf("credential profile is missing a name")
		}
		profiles[prof.Name] = prof
	}
	return nil
}

func (p *profilesValue) String() string {
	return ""
}

// CredentialProf registers a flag value that accepts vault credential
// profiles as YAML or JSON.
func CredentialProf(s kingpin.Settings) (target *map[string]Profile) {
	target = &profiles
	s.SetValue(&profilesValue{})
	return
}
