// Package memo remembers passing verdicts in extended attributes so that an
// unchanged folder is not re-verified on the next build.
package memo

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

type SHA256Sum = [sha256.Size]byte

var (
	kSplit   = []byte(",")
	kCut     = []byte(":")
	kRegex   = []byte("regex")
	kSamples = []byte("samples")
	kHits    = []byte("hits")
	kCount   = []byte("count")
	kFold    = []byte("fold")
)

// Stamp is the memoized verdict of one folder. It is only valid for the
// exact regex.txt and samples.txt contents whose hashes it carries, built
// with the same Fold setting.
type Stamp struct {
	Bits    Bits
	Regex   SHA256Sum
	Samples SHA256Sum
	Hits    int64
	Count   int64
	Fold    bool
}

// NewStamp records a passing verdict for the given file contents and
// pattern folding setting.
func NewStamp(regexData []byte, samplesData []byte, fold bool, hits int, count int) Stamp {
	return Stamp{
		Bits:    AllBits,
		Regex:   sha256.Sum256(regexData),
		Samples: sha256.Sum256(samplesData),
		Hits:    int64(hits),
		Count:   int64(count),
		Fold:    fold,
	}
}

// Check reports whether the stamp is complete and was made for exactly
// these contents and folding setting.
func (st Stamp) Check(regexData []byte, samplesData []byte, fold bool) bool {
	if !st.Bits.HasAll(AllBits) || st.Count <= 0 || st.Fold != fold {
		return false
	}
	return st.Regex == sha256.Sum256(regexData) && st.Samples == sha256.Sum256(samplesData)
}

// Decode fills st from its xattr encoding and reports whether every field
// was present. Unknown keys are ignored.
func (st *Stamp) Decode(input []byte, logger zerolog.Logger) bool {
	*st = Stamp{}
	for _, raw := range bytes.Split(input, kSplit) {
		key, value, found := bytes.Cut(raw, kCut)
		if !found {
			continue
		}
		switch {
		case bytes.EqualFold(key, kRegex):
			st.decodeHash(&st.Regex, RegexBit, value, logger)
		case bytes.EqualFold(key, kSamples):
			st.decodeHash(&st.Samples, SamplesBit, value, logger)
		case bytes.EqualFold(key, kHits):
			st.decodeInt(&st.Hits, HitsBit, value, logger)
		case bytes.EqualFold(key, kCount):
			st.decodeInt(&st.Count, CountBit, value, logger)
		case bytes.EqualFold(key, kFold):
			st.decodeBool(&st.Fold, FoldBit, value, logger)
		}
	}
	return st.Bits.HasAll(AllBits)
}

func (st *Stamp) decodeHash(out *SHA256Sum, bit Bits, raw []byte, logger zerolog.Logger) {
	if decodeHash(out[:], raw) {
		st.Bits |= bit
		return
	}
	logger.Warn().Bytes("value", raw).Stringer("field", bit).Msg("failed to decode hash")
}

func (st *Stamp) decodeInt(out *int64, bit Bits, raw []byte, logger zerolog.Logger) {
	if i64, err := strconv.ParseInt(string(raw), 10, 64); err == nil && i64 >= 0 {
		*out = i64
		st.Bits |= bit
		return
	}
	logger.Warn().Bytes("value", raw).Stringer("field", bit).Msg("failed to decode integer")
}

func (st *Stamp) decodeBool(out *bool, bit Bits, raw []byte, logger zerolog.Logger) {
	if b, err := strconv.ParseBool(string(raw)); err == nil {
		*out = b
		st.Bits |= bit
		return
	}
	logger.Warn().Bytes("value", raw).Stringer("field", bit).Msg("failed to decode boolean")
}

func decodeHash(output []byte, input []byte) bool {
	outputLen := len(output)
	if len(input) == hex.EncodedLen(outputLen) {
		n, err := hex.Decode(output, input)
		if n == outputLen && err == nil {
			return true
		}
	}
	if len(input) == base64.StdEncoding.EncodedLen(outputLen) {
		n, err := base64.StdEncoding.Decode(output, input)
		if n == outputLen && err == nil {
			return true
		}
	}
	return false
}

func (st Stamp) Append(out []byte) []byte {
	out = append(out, kRegex...)
	out = append(out, kCut...)
	out = append(out, base64.StdEncoding.EncodeToString(st.Regex[:])...)
	out = append(out, kSplit...)
	out = append(out, kSamples...)
	out = append(out, kCut...)
	out = append(out, base64.StdEncoding.EncodeToString(st.Samples[:])...)
	out = append(out, kSplit...)
	out = append(out, kHits...)
	out = append(out, kCut...)
	out = strconv.AppendInt(out, st.Hits, 10)
	out = append(out, kSplit...)
	out = append(out, kCount...)
	out = append(out, kCut...)
	out = strconv.AppendInt(out, st.Count, 10)
	out = append(out, kSplit...)
	out = append(out, kFold...)
	out = append(out, kCut...)
	out = strconv.AppendBool(out, st.Fold)
	return out
}

func (st Stamp) String() string {
	var scratch [128]byte
	return string(st.Append(scratch[:0]))
}

var _ fmt.Stringer = Stamp{}
