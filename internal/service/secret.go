package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

const invitationTokenBytes = 32

// newInvitationToken returns 256 random bits as 64 hex characters.
func newInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newAccessCode returns a uniform random code in [AccessCodeMin, AccessCodeMax].
func newAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(model.AccessCodeMax-model.AccessCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+model.AccessCodeMin, 10), nil
}
