package chat

import (
	"errors"
	"strings"
)

var (
	ErrCredentialMissing = errors.New("api credential is required")
	ErrCredentialInvalid = errors.New("api credential is malformed")
)

// CredentialPolicy checks that a credential is plausibly shaped before any
// remote call is made with it.
type CredentialPolicy struct {
	Prefix string
	// Length is the exact expected length; zero skips the check.
	Length int
}

// Validate reports ErrCredentialMissing or ErrCredentialInvalid, or nil.
func (p CredentialPolicy) Validate(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return ErrCredentialMissing
	}
	if !strings.HasPrefix(credential, p.Prefix) {
		return ErrCredentialInvalid
	}
	if p.Length > 0 && len(credential) != p.Length {
		return ErrCredentialInvalid
	}
	return nil
}

// BannerLevel is the sidebar banner style.
type BannerLevel string

const (
	BannerWarning BannerLevel = "warning"
	BannerSuccess BannerLevel = "success"
)

// Banner is the one-line credential status shown under the key input.
type Banner struct {
	Level BannerLevel `json:"level"`
	Text  string      `json:"text"`
}

var (
	warningBanner = Banner{Level: BannerWarning, Text: "Please enter your OpenAI API token!"}
	successBanner = Banner{Level: BannerSuccess, Text: "Proceed to entering your prompt message!"}
)

// BannerFor maps a credential to the banner the sidebar should show.
func (p CredentialPolicy) BannerFor(credential string) Banner {
	if p.Validate(credential) != nil {
		return warningBanner
	}
	return successBanner
}
