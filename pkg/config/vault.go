package config

import (
	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
)

// VaultModule provides a vault client configured from VAULT_ADDR, VAULT_TOKEN
// and the other standard vault environment variables.
var VaultModule = fx.Module("vault", fx.Provide(ProvideVault))

func ProvideVault() (*vault.Client, error) {
	client, err := vault.New(
		vault.WithEnvironment(),
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}
