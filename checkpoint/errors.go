package checkpoint

import "errors"

var (
	// ErrBadMagic indicates the data does not start with the checkpoint signature.
	ErrBadMagic = errors.New("checkpoint: bad magic")
	// ErrVersion indicates the checkpoint was written by an unknown format version.
	ErrVersion = errors.New("checkpoint: unsupported version")
	// ErrTruncated indicates the data lacked the bytes required for a record.
	ErrTruncated = errors.New("checkpoint: truncated data")
	// ErrStructure indicates the stored tree does not match the model it is restored into.
	ErrStructure = errors.New("checkpoint: structure mismatch")
	// ErrUnsupportedLeaf indicates a leaf type the format cannot represent.
	ErrUnsupportedLeaf = errors.New("checkpoint: unsupported leaf type")
	// ErrCorrupt indicates a record with an impossible tag or size.
	ErrCorrupt = errors.New("checkpoint: corrupt record")
)
