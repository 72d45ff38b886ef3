package domain

import "github.com/sealbound/notary/internal/values"

// Citation is a content-addressed reference to a specific version of a
// document: enough to locate it and confirm, independently of whoever
// hands it over, that what was found is what was meant (§3.3).
type Citation struct {
	*values.Catalog
}

// NewCitation builds a citation for the given tag/version pair, digesting
// the referenced document with digest. Pass values.NONE for digest to
// build the proto-citation a genesis certificate's $previous slot holds.
func NewCitation(protocol values.Name, timestamp values.Moment, tag values.Tag, version values.Version, digest values.Value) Citation {
	c := values.NewCatalog()
	c.SetAttribute(AttrProtocol, protocol)
	c.SetAttribute(AttrTimestamp, timestamp)
	c.SetAttribute(AttrTag, tag)
	c.SetAttribute(AttrVersion, version)
	c.SetAttribute(AttrDigest, digest)
	c.SetParameter(ParamType, values.Name(TypeCitation))
	return Citation{c}
}

// ProtoCitation returns the sentinel citation a certificate's first version
// carries in its $previous slot: same tag and version, no digest.
func ProtoCitation(protocol values.Name, timestamp values.Moment, tag values.Tag, version values.Version) Citation {
	return NewCitation(protocol, timestamp, tag, version, values.NONE)
}

func (c Citation) Protocol() values.Name {
	v, _ := c.Attribute(AttrProtocol)
	n, _ := v.(values.Name)
	return n
}

func (c Citation) Timestamp() values.Moment {
	v, _ := c.Attribute(AttrTimestamp)
	m, _ := v.(values.Moment)
	return m
}

func (c Citation) Tag() values.Tag {
	v, _ := c.Attribute(AttrTag)
	t, _ := v.(values.Tag)
	return t
}

func (c Citation) Version() values.Version {
	v, _ := c.Attribute(AttrVersion)
	ver, _ := v.(values.Version)
	return ver
}

func (c Citation) Digest() values.Value {
	v, _ := c.Attribute(AttrDigest)
	return v
}

// IsProto reports whether this is a proto-citation: a $previous placeholder
// with no digest, valid only as the first version of a chain.
func (c Citation) IsProto() bool {
	return values.IsNone(c.Digest())
}
