package domain

import "github.com/sealbound/notary/internal/values"

// Document is an arbitrary component sealed with a digital signature and a
// citation to the certificate whose key produced it (§3.2). The component
// itself is opaque to the notary core — any values.Value the caller hands
// to Notarize.
type Document struct {
	*values.Catalog
}

// NewDocument builds an unsigned document wrapping component, stamped with
// a citation to the signing certificate. certificate is values.NONE for a
// self-signed, certificate-less document — the genesis certificate
// document the security module builds on first key generation.
func NewDocument(component values.Value, protocol values.Name, timestamp values.Moment, certificate values.Value) Document {
	d := values.NewCatalog()
	d.SetAttribute(AttrComponent, component)
	d.SetAttribute(AttrProtocol, protocol)
	d.SetAttribute(AttrTimestamp, timestamp)
	d.SetAttribute(AttrCertificate, certificate)
	d.SetParameter(ParamType, values.Name(TypeDocument))
	return Document{d}
}

func (d Document) Component() values.Value {
	v, _ := d.Attribute(AttrComponent)
	return v
}

func (d Document) Protocol() values.Name {
	v, _ := d.Attribute(AttrProtocol)
	n, _ := v.(values.Name)
	return n
}

func (d Document) Timestamp() values.Moment {
	v, _ := d.Attribute(AttrTimestamp)
	m, _ := v.(values.Moment)
	return m
}

// CertificateCitation returns the citation to the certificate whose key
// signed this document, and false if the document carries no certificate
// reference.
func (d Document) CertificateCitation() (Citation, bool) {
	v, ok := d.Attribute(AttrCertificate)
	if !ok {
		return Citation{}, false
	}
	c, ok := v.(Citation)
	return c, ok
}

func (d Document) Signature() (values.Binary, bool) {
	v, ok := d.Attribute(AttrSignature)
	if !ok {
		return nil, false
	}
	b, ok := v.(values.Binary)
	return b, ok
}

// WithSignature returns a copy of the document with $signature set,
// leaving the receiver untouched.
func (d Document) WithSignature(sig values.Binary) Document {
	return Document{d.Clone().SetAttribute(AttrSignature, sig)}
}

// WithoutSignature returns a copy of the document with $signature removed,
// the form whose canonical bytes a signature covers.
func (d Document) WithoutSignature() Document {
	return Document{d.Catalog.WithoutAttribute(AttrSignature)}
}
