package transfer

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"hash/crc32"
	"strings"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/session"
)

// HashAlgo selects a digest for Hash.
type HashAlgo int

// Supported algorithms.
const (
	HashCRC32 HashAlgo = iota
	HashMD5
	HashSHA1
	HashSHA256
)

// String returns the algorithm name.
func (a HashAlgo) String() string {
	switch a {
	case HashMD5:
		return "md5"
	case HashSHA1:
		return "sha1"
	case HashSHA256:
		return "sha256"
	default:
		return "crc32"
	}
}

// ParseHashAlgo parses an algorithm name case-insensitively.
func ParseHashAlgo(name string) (HashAlgo, error) {
	for a := HashCRC32; a <= HashSHA256; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return HashCRC32, errors.Newf(errors.CodeInvalidInput, "unknown hash algorithm %q", name)
}

func (a HashAlgo) new() hash.Hash {
	switch a {
	case HashMD5:
		return md5.New()
	case HashSHA1:
		return sha1.New()
	case HashSHA256:
		return sha256.New()
	default:
		return crc32.NewIEEE()
	}
}

// Hash streams the file at p through algo and returns the lower-case hex
// digest. Progress and cancellation behave as in Copy.
func (e *Engine) Hash(s *session.Session, b core.Backend, p string, algo HashAlgo) (string, error) {
	var sum string
	err := e.run(s, "hash", func(t *tally) error {
		info, err := b.Stat(p)
		if err != nil {
			return backendErr(err, "failed to stat file", p)
		}
		if info.IsDir() {
			return errors.WithContext(errors.New(errors.CodeInvalidInput, "cannot hash a directory"), "path", p)
		}

		f, err := b.Open(p)
		if err != nil {
			return backendErr(err, "failed to open file", p)
		}
		defer func() { _ = f.Close() }()

		s.SetTitle(core.Base(p))
		s.NewTransfer("Hashing " + p)

		h := algo.new()
		n, err := e.stream(s, h, f, info.Size, singleThreaded)
		if err != nil {
			return err
		}
		t.files++
		t.bytes += n
		sum = hex.EncodeToString(h.Sum(nil))
		return nil
	})
	return sum, err
}
