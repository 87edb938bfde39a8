package mynonce

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const nonceByteCount = 32

//go:generate mockgen -source=nonce.go -package mynonce -destination noncer_mock.go Noncer
type Noncer interface {
	Create() (string, error)
}

type randomNoncer struct {
	reader io.Reader
}

func New() Noncer {
	return &randomNoncer{
		reader: rand.Reader,
	}
}

func (n randomNoncer) Create() (string, error) {
	buf := make([]byte, nonceByteCount)

	_, err := io.ReadFull(n.reader, buf)
	if err != nil {
		return "", fmt.Errorf("could not generate %d random bytes: %v", nonceByteCount, err)
	}

	return hex.EncodeToString(buf), nil
}
