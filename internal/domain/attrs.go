package domain

// Attribute names shared by the notary artifacts (§3). Kept as untyped
// string constants, matching the "$name" convention the spec's records use
// — these are plain catalog keys, not a schema the value framework itself
// understands.
const (
	AttrProtocol    = "$protocol"
	AttrTimestamp   = "$timestamp"
	AttrAccountID   = "$accountId"
	AttrPublicKey   = "$publicKey"
	AttrPrivateKey  = "$privateKey"
	AttrComponent   = "$component"
	AttrCertificate = "$certificate"
	AttrSignature   = "$signature"
	AttrTag         = "$tag"
	AttrVersion     = "$version"
	AttrDigest      = "$digest"
	AttrSeed        = "$seed"
	AttrIV          = "$iv"
	AttrAuth        = "$auth"
	AttrCiphertext  = "$ciphertext"
)

// Parameter names (§3's "five parameters" on a Certificate; Citations and
// Documents carry the $type parameter alone).
const (
	ParamType        = "$type"
	ParamTag         = "$tag"
	ParamVersion     = "$version"
	ParamPermissions = "$permissions"
	ParamPrevious    = "$previous"
)

// Type names, namespaced under /bali/notary per the DATA MODEL section.
const (
	TypeCertificate = "/bali/notary/Certificate/v1"
	TypeDocument    = "/bali/notary/Document/v1"
	TypeCitation    = "/bali/notary/Citation/v1"
	TypeAEM         = "/bali/notary/AEM/v1"
	TypeNotaryKey   = "/bali/notary/NotaryKey/v1"
)

// DefaultPermissions is the permissions value a freshly generated
// (non-rotated) certificate carries when the caller supplies none.
const DefaultPermissions = "/bali/permissions/public/v1"
