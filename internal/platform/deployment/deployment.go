package deployment

import (
	"encoding/hex"
	"strings"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const hexPrefix = "0x"

var ErrInvalidID = errors.New("invalid deployment ID")

// ID is the content-addressed identifier of a subgraph deployment. It accepts
// the IPFS form (Qm...) and the 32 bytes hex form (0x...).
type ID struct {
	c cid.Cid
}

// Parse decodes a deployment ID.
func Parse(s string) (ID, error) {

	if strings.HasPrefix(s, hexPrefix) {
		digest, err := hex.DecodeString(s[len(hexPrefix):])
		if err != nil {
			return ID{}, errors.Wrap(ErrInvalidID, err.Error())
		}
		if len(digest) != 32 {
			return ID{}, errors.Wrapf(ErrInvalidID, "expected 32 bytes, got %d", len(digest))
		}

		hash, err := mh.Encode(digest, mh.SHA2_256)
		if err != nil {
			return ID{}, errors.Wrap(ErrInvalidID, err.Error())
		}

		return ID{c: cid.NewCidV0(hash)}, nil
	}

	c, err := cid.Decode(s)
	if err != nil {
		return ID{}, errors.Wrap(ErrInvalidID, err.Error())
	}

	if c.Version() != 0 {
		return ID{}, errors.Wrapf(ErrInvalidID, "unsupported CID version %d", c.Version())
	}

	return ID{c: c}, nil
}

// String returns the IPFS form of the ID.
func (id ID) String() string {
	if !id.c.Defined() {
		return ""
	}
	return id.c.String()
}

// Hex returns the 0x prefixed hex form of the ID.
func (id ID) Hex() string {
	if !id.c.Defined() {
		return ""
	}

	decoded, err := mh.Decode(id.c.Hash())
	if err != nil {
		return ""
	}

	return hexPrefix + hex.EncodeToString(decoded.Digest)
}
