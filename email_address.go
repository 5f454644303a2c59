package sudoemail

import "time"

// EmailAddress is a provisioned email address with an optional sealed alias.
type EmailAddress struct {
	ID           string
	Owner        string
	EmailAddress string
	CreatedAt    time.Time

	// SealedAlias is the alias as stored by the service.
	SealedAlias *SealedEnvelope
	// Alias is set once SealedAlias has been unsealed.
	Alias string

	Status EntityStatus
}

func (a *EmailAddress) SealedFields() []SealedField {
	return []SealedField{{
		Name:     "alias",
		Envelope: a.SealedAlias,
		KeyType:  KeyTypeSymmetricKey,
		Decode: func(plaintext string) (func(), error) {
			return func() { a.Alias = plaintext }, nil
		},
	}}
}

func (a *EmailAddress) SetStatus(status EntityStatus) {
	a.Status = status
}
