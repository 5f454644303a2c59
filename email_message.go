package sudoemail

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmailAddressAndName is an address with an optional display name.
type EmailAddressAndName struct {
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName,omitempty"`
}

// EmailHeader is the sealed header block of an email message.
type EmailHeader struct {
	From           []EmailAddressAndName `json:"from"`
	To             []EmailAddressAndName `json:"to"`
	Cc             []EmailAddressAndName `json:"cc"`
	Bcc            []EmailAddressAndName `json:"bcc"`
	ReplyTo        []EmailAddressAndName `json:"replyTo"`
	Subject        *string               `json:"subject"`
	HasAttachments *bool                 `json:"hasAttachments,omitempty"`
	Date           *time.Time            `json:"date,omitempty"`
}

// Validate checks that every required address list is present and that
// each entry has an address.
func (h *EmailHeader) Validate() error {
	lists := []struct {
		name  string
		addrs []EmailAddressAndName
	}{
		{"from", h.From},
		{"to", h.To},
		{"cc", h.Cc},
		{"bcc", h.Bcc},
		{"replyTo", h.ReplyTo},
	}
	for _, l := range lists {
		if l.addrs == nil {
			return &DecodeError{Message: fmt.Sprintf("email header is missing %q", l.name)}
		}
		for i, a := range l.addrs {
			if a.EmailAddress == "" {
				return &DecodeError{Message: fmt.Sprintf("email header %s[%d] has no emailAddress", l.name, i)}
			}
		}
	}
	return nil
}

// ParseEmailHeader decodes and validates an unsealed header block.
func ParseEmailHeader(plaintext string) (*EmailHeader, error) {
	var h EmailHeader
	if err := json.Unmarshal([]byte(plaintext), &h); err != nil {
		return nil, classifyDecodeError(err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

// EmailMessage is a stored message whose header block is sealed.
type EmailMessage struct {
	ID             string
	Owner          string
	EmailAddressID string
	Size           int64
	CreatedAt      time.Time

	SealedHeader *SealedEnvelope
	// HeaderKeyType is KeyTypeKeyPair for received mail sealed by the
	// service and KeyTypeSymmetricKey for drafts and sent mail.
	HeaderKeyType KeyType
	// Header is set once SealedHeader has been unsealed.
	Header *EmailHeader

	Status EntityStatus
}

func (m *EmailMessage) SealedFields() []SealedField {
	keyType := m.HeaderKeyType
	if keyType == "" && m.SealedHeader != nil {
		keyType = m.SealedHeader.KeyType()
	}
	return []SealedField{{
		Name:     "header",
		Envelope: m.SealedHeader,
		KeyType:  keyType,
		Decode: func(plaintext string) (func(), error) {
			header, err := ParseEmailHeader(plaintext)
			if err != nil {
				return nil, err
			}
			return func() { m.Header = header }, nil
		},
	}}
}

func (m *EmailMessage) SetStatus(status EntityStatus) {
	m.Status = status
}
