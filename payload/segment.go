package payload

import (
	"errors"
	"fmt"
	"io"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/sign"
)

// Segment reads the signed prefix of r: up to SegmentSize bytes.
func Segment(r io.Reader) ([]byte, error) {
	buf := make([]byte, SegmentSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading file segment: %w", err)
	}
	return buf[:n], nil
}

// SignFile signs the leading segment of r.
func SignFile(rng io.Reader, sk *qfs.DilithiumSecretKey, r io.Reader, opts *sign.Options) (*qfs.Signature, error) {
	seg, err := Segment(r)
	if err != nil {
		return nil, err
	}
	return sign.Sign(rng, sk, seg, opts)
}

// VerifyFile reports whether sig covers the leading segment of r. The
// error is only set when r cannot be read.
func VerifyFile(pk *qfs.DilithiumPublicKey, r io.Reader, sig *qfs.Signature) (bool, error) {
	seg, err := Segment(r)
	if err != nil {
		return false, err
	}
	return sign.Verify(pk, seg, sig), nil
}
