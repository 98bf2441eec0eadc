// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/lifefork/lifefork/internal/world"
)

// CodeLoadFailed marks a layer file that could not be read.
const CodeLoadFailed = "SNAPSHOT_LOAD_FAILED"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a layer file. Both the {timestamp, worlds} document and a
// bare list of worlds are accepted; a bare list reports timestamp -1.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Document{}, oops.Code(CodeLoadFailed).With("path", path).Wrapf(err, "read layer file")
	}
	doc, err := Decode(data)
	if err != nil {
		return Document{}, oops.With("path", path).Wrap(err)
	}
	return doc, nil
}

// Decode parses layer file contents. See Load.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))

	if bytes.HasPrefix(data, []byte("[")) {
		var records []world.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return Document{}, oops.Code(CodeLoadFailed).Wrapf(err, "decode world list")
		}
		return Document{Timestamp: -1, Worlds: records}, nil
	}

	var raw struct {
		Timestamp int             `json:"timestamp"`
		Worlds    json.RawMessage `json:"worlds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, oops.Code(CodeLoadFailed).Wrapf(err, "decode layer document")
	}
	if len(raw.Worlds) == 0 {
		return Document{}, oops.Code(CodeLoadFailed).Errorf("layer document has no worlds field")
	}
	var records []world.Record
	if err := json.Unmarshal(raw.Worlds, &records); err != nil {
		return Document{}, oops.Code(CodeLoadFailed).Wrapf(err, "expected worlds to be a list")
	}
	return Document{Timestamp: raw.Timestamp, Worlds: records}, nil
}

// States converts the document's records back to world states.
func (d Document) States() []world.State {
	out := make([]world.State, len(d.Worlds))
	for i, r := range d.Worlds {
		out[i] = r.State()
	}
	return out
}
