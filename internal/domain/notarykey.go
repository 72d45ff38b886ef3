package domain

import "github.com/sealbound/notary/internal/values"

// NotaryKeyRecord is the on-disk shape of the SSM's own key material (§6):
// the private key alongside its public key and a citation to the
// certificate it corresponds to, so a restart can recover both halves of
// the current key pair from one record.
type NotaryKeyRecord struct {
	*values.Catalog
}

// NewNotaryKeyRecord builds the record the key store persists for the SSM's
// current key.
func NewNotaryKeyRecord(
	protocol values.Name,
	timestamp values.Moment,
	accountID values.Tag,
	publicKey values.Binary,
	privateKey values.Binary,
	certificate Citation,
) NotaryKeyRecord {
	r := values.NewCatalog()
	r.SetAttribute(AttrProtocol, protocol)
	r.SetAttribute(AttrTimestamp, timestamp)
	r.SetAttribute(AttrAccountID, accountID)
	r.SetAttribute(AttrPublicKey, publicKey)
	r.SetAttribute(AttrPrivateKey, privateKey)
	r.SetAttribute(AttrCertificate, certificate)
	r.SetParameter(ParamType, values.Name(TypeNotaryKey))
	return NotaryKeyRecord{r}
}

func (r NotaryKeyRecord) Protocol() values.Name {
	v, _ := r.Attribute(AttrProtocol)
	n, _ := v.(values.Name)
	return n
}

func (r NotaryKeyRecord) AccountID() values.Tag {
	v, _ := r.Attribute(AttrAccountID)
	t, _ := v.(values.Tag)
	return t
}

func (r NotaryKeyRecord) PublicKey() values.Binary {
	v, _ := r.Attribute(AttrPublicKey)
	b, _ := v.(values.Binary)
	return b
}

func (r NotaryKeyRecord) PrivateKey() values.Binary {
	v, _ := r.Attribute(AttrPrivateKey)
	b, _ := v.(values.Binary)
	return b
}

func (r NotaryKeyRecord) Certificate() Citation {
	v, _ := r.Attribute(AttrCertificate)
	c, _ := v.(Citation)
	return c
}
