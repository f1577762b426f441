package keyset

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/river-now/patterns/kit/lazyshared"
	"golang.org/x/crypto/hkdf"
)

const KeySize = 32

var ErrEmpty = errors.New("keyset is empty")

// Base64-encoded 32-byte root secret.
// You can generate new root secrets using the following command:
// `openssl rand -base64 32`.
type RootSecret string

// Latest-first slice of base64-encoded 32-byte root secrets.
type RootSecrets []RootSecret

type Key [KeySize]byte

// Latest-first slice of keys.
type Keyset []Key

// Source is anything that can hand out a keyset on demand, typically a
// *lazyshared.Fallible[Keyset].
type Source interface {
	Get() (Keyset, error)
}

func (ks Keyset) First() (Key, error) {
	if len(ks) == 0 {
		return Key{}, ErrEmpty
	}
	return ks[0], nil
}

// Attempt runs f for each key in the keyset until either (i) an attempt
// does not return an error or (ii) all keys have been attempted. This is
// useful when you want to fall back to a prior key after a rotation.
func Attempt[R any](ks Keyset, f func(Key) (R, error)) (R, error) {
	if len(ks) == 0 {
		return *new(R), ErrEmpty
	}
	var lastErr error
	for _, k := range ks {
		result, err := f(k)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return *new(R), lastErr
}

// HKDF derives a new keyset from ks, key by key, using salt and info as
// the HKDF salt and info params.
func (ks Keyset) HKDF(salt []byte, info string) (Keyset, error) {
	if len(ks) == 0 {
		return nil, ErrEmpty
	}
	derived := make(Keyset, len(ks))
	for i, root := range ks {
		r := hkdf.New(sha256.New, root[:], salt, []byte(info))
		if _, err := io.ReadFull(r, derived[i][:]); err != nil {
			return nil, fmt.Errorf("error deriving key from root key %d: %w", i, err)
		}
	}
	return derived, nil
}

// LoadRootKeyset reads a latest-first list of env vars holding root
// secrets. Example: LoadRootKeyset("CURRENT_SECRET", "PREVIOUS_SECRET")
func LoadRootKeyset(envVarNames ...string) (Keyset, error) {
	secrets, err := LoadRootSecrets(envVarNames...)
	if err != nil {
		return nil, fmt.Errorf("error loading root secrets: %w", err)
	}
	ks, err := RootSecretsToRootKeyset(secrets)
	if err != nil {
		return nil, fmt.Errorf("error converting root secrets to keyset: %w", err)
	}
	return ks, nil
}

func LoadRootSecrets(envVarNames ...string) (RootSecrets, error) {
	if len(envVarNames) == 0 {
		return nil, fmt.Errorf("at least 1 env var name is required")
	}
	secrets := make(RootSecrets, 0, len(envVarNames))
	for i, name := range envVarNames {
		if name == "" {
			return nil, fmt.Errorf("env var name %d is empty", i)
		}
		secret := os.Getenv(name)
		if secret == "" {
			return nil, fmt.Errorf("env var %s is not set", name)
		}
		secrets = append(secrets, RootSecret(secret))
	}
	return secrets, nil
}

func RootSecretsToRootKeyset(secrets RootSecrets) (Keyset, error) {
	if len(secrets) == 0 {
		return nil, fmt.Errorf("at least 1 root secret is required")
	}
	ks := make(Keyset, len(secrets))
	for i, secret := range secrets {
		b, err := base64.StdEncoding.DecodeString(string(secret))
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 secret %d: %w", i, err)
		}
		if len(b) != KeySize {
			return nil, fmt.Errorf("secret %d is not %d bytes", i, KeySize)
		}
		copy(ks[i][:], b)
	}
	return ks, nil
}

// ApplicationKeyset loads the root keyset from the environment on first use
// and derives purpose-scoped keysets from it. A failed load (for example a
// secret that has not been provisioned yet) is retried on the next use.
type ApplicationKeyset struct {
	appName string
	root    *lazyshared.Fallible[Keyset]
}

// NewApplicationKeyset takes the application name, used as the HKDF salt,
// and a latest-first list of env var names holding root secrets.
func NewApplicationKeyset(appName string, latestFirstEnvVarNames ...string) (*ApplicationKeyset, error) {
	if appName == "" {
		return nil, fmt.Errorf("application name must not be empty")
	}
	if len(latestFirstEnvVarNames) == 0 {
		return nil, fmt.Errorf("at least 1 env var name is required")
	}
	names := append([]string(nil), latestFirstEnvVarNames...)
	return &ApplicationKeyset{
		appName: appName,
		root: lazyshared.NewFallible(func() (Keyset, error) {
			return LoadRootKeyset(names...)
		}, lazyshared.RetryOnError),
	}, nil
}

func (k *ApplicationKeyset) Root() (Keyset, error) {
	return k.root.Get()
}

// Scoped returns a lazily derived keyset for purpose, used as the HKDF
// info param.
func (k *ApplicationKeyset) Scoped(purpose string) *lazyshared.Fallible[Keyset] {
	return lazyshared.NewFallible(func() (Keyset, error) {
		root, err := k.root.Get()
		if err != nil {
			return nil, err
		}
		return root.HKDF([]byte(k.appName), purpose)
	}, lazyshared.RetryOnError)
}
