package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sudoemail "github.com/sudoplatform/sudo-email-go"
)

type app struct {
	cfg *Config
	log *logrus.Logger
}

func newRootCmd(cfg *Config) *cobra.Command {
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:           "sealctl",
		Short:         "Seal and unseal values with device keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.cfg.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = logger
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "Key store backend: memory, badger, sqlite (or set SEALCTL_BACKEND)")
	flags.StringVar(&cfg.Path, "path", cfg.Path, "Badger directory or SQLite file (or set SEALCTL_PATH)")
	flags.StringVar(&cfg.EncryptionSecret, "encryption-secret", cfg.EncryptionSecret, "Badger encryption secret (or set SEALCTL_ENCRYPTION_SECRET)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (or set SEALCTL_LOG_LEVEL)")
	flags.StringVar(&cfg.Output, "output", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(a.keysCmd())
	rootCmd.AddCommand(a.sealCmd())
	rootCmd.AddCommand(a.unsealCmd())
	rootCmd.AddCommand(hashCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// withClient opens the configured key store for the duration of fn.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, client *sudoemail.Client) error) (err error) {
	ks, err := a.cfg.openKeyStore(a.log)
	if err != nil {
		return fmt.Errorf("open key store: %w", err)
	}
	defer func() {
		if cerr := ks.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close key store: %w", cerr)
		}
	}()

	client, err := sudoemail.New(sudoemail.WithKeyStore(ks), sudoemail.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(cmd.Context(), client)
}

func (a *app) print(w io.Writer, text string, v any) error {
	if a.cfg.Output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sealctl version %s\n", version)
		},
	}
}

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage device keys",
	}
	cmd.AddCommand(a.keysGeneratePairCmd())
	cmd.AddCommand(a.keysCurrentCmd())
	cmd.AddCommand(a.keysRotateCmd())
	cmd.AddCommand(a.keysExistsCmd())
	cmd.AddCommand(a.keysRemoveCmd())
	cmd.AddCommand(a.keysResetCmd())
	return cmd
}

func (a *app) keysGeneratePairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-pair",
		Short: "Generate a device key pair and print its public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				key, err := client.GenerateDeviceKey(ctx)
				if err != nil {
					return err
				}
				text := fmt.Sprintf("%s %s %s", key.ID, key.Format, base64.StdEncoding.EncodeToString(key.Data))
				return a.print(cmd.OutOrStdout(), text, map[string]string{
					"keyId":     key.ID,
					"algorithm": key.Algorithm,
					"format":    string(key.Format),
					"publicKey": base64.StdEncoding.EncodeToString(key.Data),
				})
			})
		},
	}
}

func (a *app) keysCurrentCmd() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Print the current symmetric key id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				var (
					id  string
					err error
				)
				if create {
					id, err = client.Keys().EnsureCurrentSymmetricKey(ctx)
				} else {
					var ok bool
					id, ok, err = client.Keys().GetCurrentSymmetricKeyID(ctx)
					if err == nil && !ok {
						return errors.New("no current symmetric key (use --create)")
					}
				}
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), id, map[string]string{"keyId": id})
			})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create a symmetric key if none is usable")
	return cmd
}

func (a *app) keysRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Install a new current symmetric key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				id, err := client.Keys().RotateSymmetricKey(ctx)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), id, map[string]string{"keyId": id})
			})
		},
	}
}

func (a *app) keysExistsCmd() *cobra.Command {
	var keyType string
	cmd := &cobra.Command{
		Use:   "exists <key-id>",
		Short: "Report whether a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kt, err := parseKeyType(keyType)
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				exists, err := client.Keys().KeyExists(ctx, args[0], kt)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), fmt.Sprintf("%t", exists), map[string]any{
					"keyId":  args[0],
					"exists": exists,
				})
			})
		},
	}
	cmd.Flags().StringVar(&keyType, "type", string(sudoemail.KeyTypeSymmetricKey), "Key type: SymmetricKey, KeyPair")
	return cmd
}

func (a *app) keysRemoveCmd() *cobra.Command {
	var keyType string
	cmd := &cobra.Command{
		Use:   "remove <key-id>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kt, err := parseKeyType(keyType)
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				return client.Keys().RemoveKey(ctx, args[0], kt)
			})
		},
	}
	cmd.Flags().StringVar(&keyType, "type", string(sudoemail.KeyTypeSymmetricKey), "Key type: SymmetricKey, KeyPair")
	return cmd
}

func (a *app) keysResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every key and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset removes all keys; pass --yes to confirm")
			}
			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				return client.Keys().Reset(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm removal of all keys")
	return cmd
}

func (a *app) sealCmd() *cobra.Command {
	var (
		keyID   string
		keyType string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "seal [value]",
		Short: "Seal a value and print its envelope",
		Long:  "Seal a value and print its envelope. The value is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kt, err := parseKeyType(keyType)
			if err != nil {
				return err
			}
			payload, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			plainTextType := sudoemail.PlainTextString
			if asJSON {
				if !json.Valid(payload) {
					return errors.New("input is not valid JSON")
				}
				plainTextType = sudoemail.PlainTextJSONString
			}

			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				id := keyID
				if id == "" {
					if kt != sudoemail.KeyTypeSymmetricKey {
						return errors.New("--key-id is required for KeyPair sealing")
					}
					if id, err = client.Keys().EnsureCurrentSymmetricKey(ctx); err != nil {
						return err
					}
				}
				env, err := client.Sealer().Seal(ctx, payload, id, kt, plainTextType)
				if err != nil {
					return err
				}
				out, err := json.Marshal(env)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&keyID, "key-id", "", "Key id (default: current symmetric key)")
	cmd.Flags().StringVar(&keyType, "type", string(sudoemail.KeyTypeSymmetricKey), "Key type: SymmetricKey, KeyPair")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Mark the value as a JSON string")
	return cmd
}

func (a *app) unsealCmd() *cobra.Command {
	var keyType string
	cmd := &cobra.Command{
		Use:   "unseal [envelope]",
		Short: "Unseal an envelope and print its plaintext",
		Long:  "Unseal an envelope and print its plaintext. The envelope JSON is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			env, err := sudoemail.ParseEnvelope(raw)
			if err != nil {
				return err
			}
			kt := env.KeyType()
			if keyType != "" {
				if kt, err = parseKeyType(keyType); err != nil {
					return err
				}
			}

			return a.withClient(cmd, func(ctx context.Context, client *sudoemail.Client) error {
				plaintext, err := client.Sealer().Unseal(ctx, env, kt)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), plaintext, map[string]string{
					"keyId":     env.KeyID,
					"plaintext": plaintext,
				})
			})
		},
	}
	cmd.Flags().StringVar(&keyType, "type", "", "Key type (default: inferred from the envelope algorithm)")
	return cmd
}

func hashCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "hash <address>",
		Short: "Print the blocklist hash of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := sudoemail.HashValue(sudoemail.NormalizeAddress(args[0]))
			if owner != "" {
				hash = sudoemail.HashOwnedAddress(owner, args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Scope the hash to an owner")
	return cmd
}

func parseKeyType(s string) (sudoemail.KeyType, error) {
	switch kt := sudoemail.KeyType(s); kt {
	case sudoemail.KeyTypeSymmetricKey, sudoemail.KeyTypeKeyPair:
		return kt, nil
	default:
		return "", fmt.Errorf("unknown key type %q (want %s or %s)", s, sudoemail.KeyTypeSymmetricKey, sudoemail.KeyTypeKeyPair)
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return []byte(strings.TrimRight(string(data), "\r\n")), nil
}
