// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lifefork/lifefork/internal/config"
)

var (
	entropy     = ulid.Monotonic(crand.Reader, 0)
	entropyLock sync.Mutex
)

// NewRunID generates a run id. Ids generated by one process sort in
// creation order.
func NewRunID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ParseRunID validates a run id. Run ids name output directories, so
// anything but a ULID is a configuration error.
func ParseRunID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code(config.CodeConfigInvalid).
			With("field", "run_id").
			With("run_id", s).
			Wrapf(err, "invalid run id %q", s)
	}
	return id, nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, oops.Wrapf(err, "read random seed")
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns seed, or a fresh random seed when seed is 0.
func ResolveSeed(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}
