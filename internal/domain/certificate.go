package domain

import "github.com/sealbound/notary/internal/values"

// Certificate binds an account to a public key under a specific tag and
// version, with the permissions that key carries and a citation to the
// certificate it supersedes (§3.1). The signature over a certificate
// lives on the enclosing Document, not on the Certificate itself — §3.1
// lists no $signature attribute here.
type Certificate struct {
	*values.Catalog
}

// NewCertificate builds an unsigned certificate. previous must be the
// ProtoCitation for a genesis certificate, or a citation to the certificate
// this one supersedes on rotation.
func NewCertificate(
	protocol values.Name,
	timestamp values.Moment,
	accountID values.Tag,
	publicKey values.Binary,
	tag values.Tag,
	version values.Version,
	permissions values.Name,
	previous Citation,
) Certificate {
	c := values.NewCatalog()
	c.SetAttribute(AttrProtocol, protocol)
	c.SetAttribute(AttrTimestamp, timestamp)
	c.SetAttribute(AttrAccountID, accountID)
	c.SetAttribute(AttrPublicKey, publicKey)
	c.SetParameter(ParamType, values.Name(TypeCertificate))
	c.SetParameter(ParamTag, tag)
	c.SetParameter(ParamVersion, version)
	c.SetParameter(ParamPermissions, permissions)
	c.SetParameter(ParamPrevious, previous)
	return Certificate{c}
}

func (c Certificate) Protocol() values.Name {
	v, _ := c.Attribute(AttrProtocol)
	n, _ := v.(values.Name)
	return n
}

func (c Certificate) Timestamp() values.Moment {
	v, _ := c.Attribute(AttrTimestamp)
	m, _ := v.(values.Moment)
	return m
}

func (c Certificate) AccountID() values.Tag {
	v, _ := c.Attribute(AttrAccountID)
	t, _ := v.(values.Tag)
	return t
}

func (c Certificate) PublicKey() values.Binary {
	v, _ := c.Attribute(AttrPublicKey)
	b, _ := v.(values.Binary)
	return b
}

func (c Certificate) Tag() values.Tag {
	v, _ := c.Parameter(ParamTag)
	t, _ := v.(values.Tag)
	return t
}

func (c Certificate) Version() values.Version {
	v, _ := c.Parameter(ParamVersion)
	ver, _ := v.(values.Version)
	return ver
}

func (c Certificate) Permissions() values.Name {
	v, _ := c.Parameter(ParamPermissions)
	n, _ := v.(values.Name)
	return n
}

// Previous returns the citation to the certificate this one supersedes.
// For a genesis certificate this is a proto-citation; Citation.IsProto
// (or IsGenesis) tells the two cases apart.
func (c Certificate) Previous() Citation {
	v, _ := c.Parameter(ParamPrevious)
	p, _ := v.(Citation)
	return p
}

// IsGenesis reports whether this certificate is the first in its chain.
func (c Certificate) IsGenesis() bool {
	return c.Previous().IsProto()
}

// Citation returns the citation a verifier would present to ask for this
// exact certificate version: same tag, version, and protocol, carrying
// digest, which callers compute over the signed certificate Document.
func (c Certificate) Citation(digest values.Value) Citation {
	return NewCitation(c.Protocol(), c.Timestamp(), c.Tag(), c.Version(), digest)
}
