package domain

import "github.com/go-playground/validator/v10"

// validate is shared across the decode path. go-playground/validator is
// safe for concurrent use once built, so a single package-level instance
// is enough.
var validate = validator.New(validator.WithRequiredStructEnabled())

// citationShape checks three of the five wire fields every Citation
// carries ($protocol, $tag, $version), validated before the string fields
// are parsed into typed values.Tag / values.Version. A struct-tag pass
// here catches a truncated or empty field with one message instead of
// separate parse errors further down.
type citationShape struct {
	Protocol string `validate:"required"`
	Tag      string `validate:"required"`
	Version  string `validate:"required"`
}

// certificateShape mirrors Certificate's required attributes and
// parameters (§3.1). There is no $signature field: a Certificate carries
// none, the signature lives on the enclosing Document.
type certificateShape struct {
	Protocol    string `validate:"required"`
	AccountID   string `validate:"required"`
	PublicKey   string `validate:"required"`
	Tag         string `validate:"required"`
	Version     string `validate:"required"`
	Permissions string `validate:"required"`
}

// documentShape checks Document's $protocol attribute (§3.2); the other
// attributes are checked as they are parsed.
type documentShape struct {
	Protocol string `validate:"required"`
}

// aemShape mirrors AEM's four wire fields (§3.4).
type aemShape struct {
	Protocol   string `validate:"required"`
	Seed       string `validate:"required"`
	IV         string `validate:"required"`
	Auth       string `validate:"required"`
	Ciphertext string `validate:"required"`
}
