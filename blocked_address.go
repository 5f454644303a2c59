package sudoemail

// BlockedAddress is an address the owner no longer accepts mail from.
//
// HashedBlockedValue lets the service match incoming mail without learning
// the address; SealedValue lets the owner list the addresses they blocked.
type BlockedAddress struct {
	Owner              string
	HashedBlockedValue string
	SealedValue        *SealedEnvelope

	// Address is set once SealedValue has been unsealed.
	Address string

	Status EntityStatus
}

func (b *BlockedAddress) SealedFields() []SealedField {
	return []SealedField{{
		Name:     "blockedAddress",
		Envelope: b.SealedValue,
		KeyType:  KeyTypeSymmetricKey,
		Decode: func(plaintext string) (func(), error) {
			return func() { b.Address = plaintext }, nil
		},
	}}
}

func (b *BlockedAddress) SetStatus(status EntityStatus) {
	b.Status = status
}
