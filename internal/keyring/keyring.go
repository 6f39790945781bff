package keyring

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"ledger/pkg/core"
)

// EnvPrefix prefixes credential variables: LEDGER_KRAKEN_KEY,
// LEDGER_KRAKEN_SECRET, LEDGER_COINBASEPRO_PASSPHRASE.
const EnvPrefix = "LEDGER"

// KeyRing holds named credential profiles. A profile ID is usually the
// exchange name, or exchange/label when several accounts exist.
type KeyRing struct {
	mu     sync.RWMutex
	keys   []*APIKey
	logger zerolog.Logger
}

type APIKey struct {
	ID         string `yaml:"id"`
	Exchange   string `yaml:"exchange"`
	Key        string `yaml:"key"`
	Secret     string `yaml:"secret"`
	Passphrase string `yaml:"passphrase,omitempty"`
	Disabled   bool   `yaml:"disabled,omitempty"`
}

type file struct {
	Profiles []*APIKey `yaml:"profiles"`
}

func NewKeyRing(keys []*APIKey) *KeyRing {
	k := &KeyRing{logger: zerolog.Nop()}
	for _, key := range keys {
		k.Add(key)
	}
	return k
}

// SetLogger configures the logger for the key ring.
func (k *KeyRing) SetLogger(logger zerolog.Logger) {
	k.logger = logger
}

// Get returns the enabled profile with the given ID.
func (k *KeyRing) Get(id string) (*APIKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, key := range k.keys {
		if key.ID == id {
			if key.Disabled {
				return nil, fmt.Errorf("profile %q is disabled", id)
			}
			return key, nil
		}
	}
	return nil, fmt.Errorf("profile %q: %w", id, core.ErrNoCredentials)
}

// ForExchange returns the first enabled profile for exchange.
func (k *KeyRing) ForExchange(exchange string) (*APIKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, key := range k.keys {
		if key.Exchange == exchange && !key.Disabled {
			return key, nil
		}
	}
	return nil, fmt.Errorf("exchange %q: %w", exchange, core.ErrNoCredentials)
}

// IDs returns the profile IDs in insertion order.
func (k *KeyRing) IDs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	ids := make([]string, 0, len(k.keys))
	for _, key := range k.keys {
		ids = append(ids, key.ID)
	}
	return ids
}

func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = true
			return
		}
	}
}

func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = false
			return
		}
	}
}

// Add stores a copy of key. A profile with the same ID is replaced.
func (k *KeyRing) Add(key *APIKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	stored := *key
	if stored.ID == "" {
		stored.ID = stored.Exchange
	}
	if stored.Exchange == "" {
		stored.Exchange, _, _ = strings.Cut(stored.ID, "/")
	}

	for i, existing := range k.keys {
		if existing.ID == stored.ID {
			k.keys[i] = &stored
			return
		}
	}
	k.keys = append(k.keys, &stored)
}

func (k *KeyRing) Remove(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys = slices.DeleteFunc(k.keys, func(key *APIKey) bool {
		return key.ID == id
	})
}

// LoadYAML adds every profile listed in a YAML document.
func (k *KeyRing) LoadYAML(r io.Reader) error {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("decode profiles: %w", err)
	}
	for _, key := range f.Profiles {
		if key.ID == "" && key.Exchange == "" {
			return fmt.Errorf("profile without id or exchange")
		}
		k.Add(key)
	}
	k.logger.Debug().Int("profiles", len(f.Profiles)).Msg("loaded yaml profiles")
	return nil
}

// LoadFile reads profiles from a YAML file at path.
func (k *KeyRing) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return k.LoadYAML(f)
}

// LoadEnv adds a profile for every exchange whose key and secret are
// present in the environment. lookup is usually os.LookupEnv.
func (k *KeyRing) LoadEnv(exchanges []string, lookup func(string) (string, bool)) int {
	loaded := 0
	for _, exchange := range exchanges {
		prefix := EnvPrefix + "_" + strings.ToUpper(exchange) + "_"
		key, hasKey := lookup(prefix + "KEY")
		secret, hasSecret := lookup(prefix + "SECRET")
		if !hasKey || !hasSecret {
			continue
		}
		passphrase, _ := lookup(prefix + "PASSPHRASE")
		k.Add(&APIKey{
			ID:         exchange,
			Exchange:   exchange,
			Key:        key,
			Secret:     secret,
			Passphrase: passphrase,
		})
		loaded++
	}
	k.logger.Debug().Int("profiles", loaded).Msg("loaded env profiles")
	return loaded
}

// Credentials converts the profile for use in a core.Config.
func (a *APIKey) Credentials() *core.Credentials {
	return &core.Credentials{
		APIKey:     a.Key,
		SecretKey:  a.Secret,
		Passphrase: a.Passphrase,
	}
}

func (a *APIKey) String() string {
	return fmt.Sprintf("APIKey{ID:%s, Key:%s}", a.ID, maskKey(a.Key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
