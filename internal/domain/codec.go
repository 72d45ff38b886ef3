package domain

import (
	"encoding/json"
	"fmt"

	"github.com/sealbound/notary/internal/values"
)

// EncodeKeyRecord returns the canonical bytes a NotaryKey file stores.
func EncodeKeyRecord(r NotaryKeyRecord) ([]byte, error) {
	return values.Canonicalize(r.Catalog)
}

// EncodeDocument returns the canonical bytes a
// NotaryCertificate file stores: the signed Document wrapping a
// Certificate.
func EncodeDocument(d Document) ([]byte, error) {
	return values.Canonicalize(d.Catalog)
}

// DecodeKeyRecord parses the bytes EncodeKeyRecord produced.
func DecodeKeyRecord(data []byte) (NotaryKeyRecord, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return NotaryKeyRecord{}, fmt.Errorf("decode key record: %w", err)
	}
	protocol, err := obj.name(AttrProtocol)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	timestamp, err := obj.moment(AttrTimestamp)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	accountID, err := obj.tag(AttrAccountID)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	publicKey, err := obj.binary(AttrPublicKey)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	privateKey, err := obj.binary(AttrPrivateKey)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	certObj, err := obj.object(AttrCertificate)
	if err != nil {
		return NotaryKeyRecord{}, err
	}
	cert, err := decodeCitation(certObj)
	if err != nil {
		return NotaryKeyRecord{}, fmt.Errorf("decode key record certificate citation: %w", err)
	}
	return NewNotaryKeyRecord(protocol, timestamp, accountID, publicKey, privateKey, cert), nil
}

// DecodeCertificateDocument parses the bytes EncodeDocument
// produced.
func DecodeCertificateDocument(data []byte) (Document, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return Document{}, fmt.Errorf("decode certificate document: %w", err)
	}
	shapeProtocol, _ := obj.str(AttrProtocol)
	if err := validate.Struct(documentShape{Protocol: shapeProtocol}); err != nil {
		return Document{}, fmt.Errorf("document shape: %w", err)
	}

	protocol, err := obj.name(AttrProtocol)
	if err != nil {
		return Document{}, err
	}
	timestamp, err := obj.moment(AttrTimestamp)
	if err != nil {
		return Document{}, err
	}
	certificateObj, hasCertificate, err := obj.optionalObject(AttrCertificate)
	if err != nil {
		return Document{}, err
	}
	var certificateValue values.Value = values.NONE
	if hasCertificate {
		citation, err := decodeCitation(certificateObj)
		if err != nil {
			return Document{}, fmt.Errorf("decode certificate document certificate citation: %w", err)
		}
		certificateValue = citation
	}
	componentObj, err := obj.object(AttrComponent)
	if err != nil {
		return Document{}, err
	}
	cert, err := decodeCertificate(componentObj)
	if err != nil {
		return Document{}, fmt.Errorf("decode certificate document component: %w", err)
	}

	doc := NewDocument(cert, protocol, timestamp, certificateValue)
	if sig, ok, err := obj.optionalBinary(AttrSignature); err != nil {
		return Document{}, err
	} else if ok {
		doc = doc.WithSignature(sig)
	}
	return doc, nil
}

// EncodeAEM returns the canonical bytes of an AEM envelope.
func EncodeAEM(a AEM) ([]byte, error) {
	return values.Canonicalize(a.Catalog)
}

// DecodeAEM parses the bytes EncodeAEM produced.
func DecodeAEM(data []byte) (AEM, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return AEM{}, fmt.Errorf("decode aem: %w", err)
	}
	shape := aemShape{}
	shape.Protocol, _ = obj.str(AttrProtocol)
	shape.Seed, _ = obj.str(AttrSeed)
	shape.IV, _ = obj.str(AttrIV)
	shape.Auth, _ = obj.str(AttrAuth)
	shape.Ciphertext, _ = obj.str(AttrCiphertext)
	if err := validate.Struct(shape); err != nil {
		return AEM{}, fmt.Errorf("aem shape: %w", err)
	}

	protocol, err := obj.name(AttrProtocol)
	if err != nil {
		return AEM{}, err
	}
	timestamp, err := obj.moment(AttrTimestamp)
	if err != nil {
		return AEM{}, err
	}
	seed, err := obj.binary(AttrSeed)
	if err != nil {
		return AEM{}, err
	}
	iv, err := obj.binary(AttrIV)
	if err != nil {
		return AEM{}, err
	}
	auth, err := obj.binary(AttrAuth)
	if err != nil {
		return AEM{}, err
	}
	ciphertext, err := obj.binary(AttrCiphertext)
	if err != nil {
		return AEM{}, err
	}
	return NewAEM(protocol, timestamp, seed, iv, auth, ciphertext), nil
}

func decodeCertificate(obj jsonObject) (Certificate, error) {
	params, err := obj.params()
	if err != nil {
		return Certificate{}, err
	}
	shape := certificateShape{}
	shape.Protocol, _ = obj.str(AttrProtocol)
	shape.AccountID, _ = obj.str(AttrAccountID)
	shape.PublicKey, _ = obj.str(AttrPublicKey)
	shape.Tag, _ = params.str(ParamTag)
	shape.Version, _ = params.str(ParamVersion)
	shape.Permissions, _ = params.str(ParamPermissions)
	if err := validate.Struct(shape); err != nil {
		return Certificate{}, fmt.Errorf("certificate shape: %w", err)
	}

	protocol, err := obj.name(AttrProtocol)
	if err != nil {
		return Certificate{}, err
	}
	timestamp, err := obj.moment(AttrTimestamp)
	if err != nil {
		return Certificate{}, err
	}
	accountID, err := obj.tag(AttrAccountID)
	if err != nil {
		return Certificate{}, err
	}
	publicKey, err := obj.binary(AttrPublicKey)
	if err != nil {
		return Certificate{}, err
	}
	tag, err := params.tag(ParamTag)
	if err != nil {
		return Certificate{}, err
	}
	version, err := params.version(ParamVersion)
	if err != nil {
		return Certificate{}, err
	}
	permissions, err := params.name(ParamPermissions)
	if err != nil {
		return Certificate{}, err
	}
	previousObj, err := params.object(ParamPrevious)
	if err != nil {
		return Certificate{}, err
	}
	previous, err := decodeCitation(previousObj)
	if err != nil {
		return Certificate{}, fmt.Errorf("decode previous citation: %w", err)
	}

	return NewCertificate(protocol, timestamp, accountID, publicKey, tag, version, permissions, previous), nil
}

func decodeCitation(obj jsonObject) (Citation, error) {
	shapeProtocol, _ := obj.str(AttrProtocol)
	shapeTag, _ := obj.str(AttrTag)
	shapeVersion, _ := obj.str(AttrVersion)
	if err := validate.Struct(citationShape{Protocol: shapeProtocol, Tag: shapeTag, Version: shapeVersion}); err != nil {
		return Citation{}, fmt.Errorf("citation shape: %w", err)
	}

	protocol, err := obj.name(AttrProtocol)
	if err != nil {
		return Citation{}, err
	}
	timestamp, err := obj.moment(AttrTimestamp)
	if err != nil {
		return Citation{}, err
	}
	tag, err := obj.tag(AttrTag)
	if err != nil {
		return Citation{}, err
	}
	version, err := obj.version(AttrVersion)
	if err != nil {
		return Citation{}, err
	}
	digest, ok, err := obj.optionalBinary(AttrDigest)
	if err != nil {
		return Citation{}, err
	}
	if !ok {
		return NewCitation(protocol, timestamp, tag, version, values.NONE), nil
	}
	return NewCitation(protocol, timestamp, tag, version, digest), nil
}

// jsonObject is a parsed canonical-JSON object: the attribute fields plus
// the nested "$parameters" object, kept separate the way Catalog keeps
// attrs and params separate.
type jsonObject map[string]any

func decodeObject(data []byte) (jsonObject, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return jsonObject(raw), nil
}

const parametersField = "$parameters"

func (o jsonObject) params() (jsonObject, error) {
	return o.object(parametersField)
}

func (o jsonObject) str(name string) (string, error) {
	v, ok := o[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return s, nil
}

func (o jsonObject) name(field string) (values.Name, error) {
	s, err := o.str(field)
	if err != nil {
		return "", err
	}
	return values.Name(s), nil
}

func (o jsonObject) tag(field string) (values.Tag, error) {
	s, err := o.str(field)
	if err != nil {
		return values.Tag{}, err
	}
	return values.TagFromString(s)
}

func (o jsonObject) version(field string) (values.Version, error) {
	s, err := o.str(field)
	if err != nil {
		return values.Version{}, err
	}
	return values.ParseVersion(s)
}

func (o jsonObject) moment(field string) (values.Moment, error) {
	s, err := o.str(field)
	if err != nil {
		return values.Moment{}, err
	}
	return values.ParseMoment(s)
}

func (o jsonObject) binary(field string) (values.Binary, error) {
	s, err := o.str(field)
	if err != nil {
		return nil, err
	}
	return values.ParseBinary(s)
}

func (o jsonObject) optionalBinary(field string) (values.Binary, bool, error) {
	v, ok := o[field]
	if !ok || v == nil {
		return nil, false, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, false, fmt.Errorf("field %q is not a string", field)
	}
	b, err := values.ParseBinary(s)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (o jsonObject) object(field string) (jsonObject, error) {
	v, ok := o[field]
	if !ok {
		return nil, fmt.Errorf("missing field %q", field)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not an object", field)
	}
	return jsonObject(m), nil
}

func (o jsonObject) optionalObject(field string) (jsonObject, bool, error) {
	v, ok := o[field]
	if !ok || v == nil {
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("field %q is not an object", field)
	}
	return jsonObject(m), true, nil
}
