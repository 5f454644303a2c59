//go:build integration

package integration

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"
	"testing"

	sudoemail "github.com/sudoplatform/sudo-email-go"
	"github.com/sudoplatform/sudo-email-go/keystore"
)

// vectorSet is the file format of SUDO_EMAIL_VECTORS_FILE.
type vectorSet struct {
	// SymmetricKeys maps key id to hex encoded AES-256 key.
	SymmetricKeys map[string]string `json:"symmetricKeys"`
	// PrivateKeys maps key id to base64 PKCS#1 RSA private key DER.
	PrivateKeys map[string]string `json:"privateKeys"`
	Cases       []vectorCase      `json:"cases"`
}

type vectorCase struct {
	Name      string                   `json:"name"`
	Envelope  sudoemail.SealedEnvelope `json:"envelope"`
	Plaintext string                   `json:"plaintext"`
}

var builtinVectors = vectorSet{
	SymmetricKeys: map[string]string{
		"kat-symmetric": "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
	},
	Cases: []vectorCase{
		{
			Name: "aes-cbc zero iv",
			Envelope: sudoemail.SealedEnvelope{
				Algorithm:               sudoemail.AlgorithmSymmetric,
				KeyID:                   "kat-symmetric",
				PlainTextType:           sudoemail.PlainTextString,
				Base64EncodedSealedData: "YSuNeC5ivCyXThNtlGIQlg==",
			},
			Plaintext: "hello sudo",
		},
	},
}

func loadVectors(t *testing.T, set vectorSet) (*sudoemail.Client, func()) {
	t.Helper()
	ctx := testContext(t)

	backend := keystore.NewMemoryBackend()
	ks := keystore.NewSoftware(backend, keystore.WithLogger(testLogger()))

	for id, keyHex := range set.SymmetricKeys {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			t.Fatalf("symmetric key %s: %v", id, err)
		}
		if err := ks.AddSymmetricKey(ctx, key, id); err != nil {
			t.Fatalf("AddSymmetricKey(%s) error = %v", id, err)
		}
	}
	// Private keys have no KeyStore import, so they go straight to the
	// backend.
	for id, keyB64 := range set.PrivateKeys {
		der, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			t.Fatalf("private key %s: %v", id, err)
		}
		if err := backend.Put(ctx, keystore.NamespacePrivateKey, id, der); err != nil {
			t.Fatalf("Put(private %s) error = %v", id, err)
		}
	}

	client, err := sudoemail.New(sudoemail.WithKeyStore(ks), sudoemail.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client, func() {
		client.Close()
		ks.Close()
	}
}

func runVectors(t *testing.T, set vectorSet) {
	client, cleanup := loadVectors(t, set)
	defer cleanup()

	for _, tc := range set.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := testContext(t)
			env := tc.Envelope

			got, err := client.Sealer().Unseal(ctx, &env, env.KeyType())
			if err != nil {
				t.Fatalf("Unseal() error = %v", err)
			}
			if got != tc.Plaintext {
				t.Errorf("Unseal() = %q, want %q", got, tc.Plaintext)
			}

			out := sudoemail.UnsealValue(ctx, client.Pipeline(), &env, env.KeyType())
			if v, err := out.Get(); err != nil || v != tc.Plaintext {
				t.Errorf("UnsealValue() = %q, %v", v, err)
			}
		})
	}
}

func TestIntegration_BuiltinVectors(t *testing.T) {
	runVectors(t, builtinVectors)
}

func TestIntegration_CrossClientVectors(t *testing.T) {
	if vectorsFile == "" {
		t.Skip("SUDO_EMAIL_VECTORS_FILE not set")
	}

	data, err := os.ReadFile(vectorsFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var set vectorSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(set.Cases) == 0 {
		t.Fatal("vectors file has no cases")
	}
	t.Logf("Loaded %d vectors from %s", len(set.Cases), vectorsFile)

	runVectors(t, set)
}

// TestIntegration_SymmetricSealIsDeterministic pins the sealed form of the
// builtin vector so other clients can check against it.
func TestIntegration_SymmetricSealIsDeterministic(t *testing.T) {
	client, cleanup := loadVectors(t, builtinVectors)
	defer cleanup()

	env, err := client.Sealer().SealString(testContext(t), "hello sudo", "kat-symmetric", sudoemail.KeyTypeSymmetricKey)
	if err != nil {
		t.Fatalf("SealString() error = %v", err)
	}
	if env.Base64EncodedSealedData != builtinVectors.Cases[0].Envelope.Base64EncodedSealedData {
		t.Errorf("sealed data = %s, want %s", env.Base64EncodedSealedData, builtinVectors.Cases[0].Envelope.Base64EncodedSealedData)
	}
}
