// Package codec serializes a SecretSet to the flat plaintext buffer that is
// encrypted into the secret file.
//
// Encoding is one "name value" record per line, sorted by name, lines joined
// by '\n' with no trailing newline. Names and values must not contain
// whitespace; no escaping is attempted.
package codec

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

const (
	recordSep = "\n"
	fieldSep  = " "
)

// Serialize encodes set deterministically. An empty set encodes to nil.
func Serialize(set model.SecretSet) []byte {
	if len(set) == 0 {
		return nil
	}

	var b strings.Builder
	for i, name := range set.Names() {
		if i > 0 {
			b.WriteString(recordSep)
		}
		b.WriteString(name)
		b.WriteString(fieldSep)
		b.WriteString(set[name])
	}
	return []byte(b.String())
}

// Parse decodes data produced by Serialize. A single trailing newline is
// tolerated. Any line without exactly two fields, or a repeated name, fails
// with model.ErrMalformedRecord rather than being skipped.
func Parse(data []byte) (model.SecretSet, error) {
	set := model.SecretSet{}
	text := strings.TrimSuffix(string(data), recordSep)
	if text == "" {
		return set, nil
	}

	for i, line := range strings.Split(text, recordSep) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, model.NewError(model.KindCodec, "parse",
				fmt.Errorf("%w: line %d has %d fields, want 2", model.ErrMalformedRecord, i+1, len(fields)))
		}
		name, value := fields[0], fields[1]
		if set.Has(name) {
			return nil, model.NewError(model.KindCodec, "parse",
				fmt.Errorf("%w: line %d repeats name %q", model.ErrMalformedRecord, i+1, name))
		}
		set[name] = value
	}

	return set, nil
}
