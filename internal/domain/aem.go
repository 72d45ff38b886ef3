package domain

import "github.com/sealbound/notary/internal/values"

// AEM (Authenticated Encrypted Message) is the envelope EncryptComponent
// produces: an ECDH-derived symmetric key encrypts the component under
// AES-256-GCM, with the sender's ephemeral public key carried alongside so
// the recipient's private key can re-derive the same symmetric key (§3.4).
type AEM struct {
	*values.Catalog
}

// NewAEM builds an AEM from its four wire fields. seed is the ephemeral
// public key the recipient combines with its own private key to derive the
// shared secret; iv is the GCM nonce; auth is the GCM authentication tag;
// ciphertext is the sealed component bytes.
func NewAEM(protocol values.Name, timestamp values.Moment, seed, iv, auth, ciphertext values.Binary) AEM {
	a := values.NewCatalog()
	a.SetAttribute(AttrProtocol, protocol)
	a.SetAttribute(AttrTimestamp, timestamp)
	a.SetAttribute(AttrSeed, seed)
	a.SetAttribute(AttrIV, iv)
	a.SetAttribute(AttrAuth, auth)
	a.SetAttribute(AttrCiphertext, ciphertext)
	a.SetParameter(ParamType, values.Name(TypeAEM))
	return AEM{a}
}

func (a AEM) Protocol() values.Name {
	v, _ := a.Attribute(AttrProtocol)
	n, _ := v.(values.Name)
	return n
}

func (a AEM) Timestamp() values.Moment {
	v, _ := a.Attribute(AttrTimestamp)
	m, _ := v.(values.Moment)
	return m
}

func (a AEM) Seed() values.Binary {
	v, _ := a.Attribute(AttrSeed)
	b, _ := v.(values.Binary)
	return b
}

func (a AEM) IV() values.Binary {
	v, _ := a.Attribute(AttrIV)
	b, _ := v.(values.Binary)
	return b
}

func (a AEM) Auth() values.Binary {
	v, _ := a.Attribute(AttrAuth)
	b, _ := v.(values.Binary)
	return b
}

func (a AEM) Ciphertext() values.Binary {
	v, _ := a.Attribute(AttrCiphertext)
	b, _ := v.(values.Binary)
	return b
}
