// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr string
	}{
		{"1.0.0", ""},
		{"1.4.2", ""},
		{"v1.2.0", ""},
		{"2.0.0", "is not supported"},
		{"0.9.0", "is not supported"},
		{"latest", "is not a semantic version"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckVersion(tt.version)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, IsInvalid(err))
		})
	}
}
