package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/ductcad/snapengine/core/geometry"
	"github.com/ductcad/snapengine/core/snap"
)

const (
	keyPrefix      = "snapq"
	keySeparator   = ":"
	truncateLength = 32
)

// KeyGenerator derives stable cache keys from a query position and its
// effective options. Equal position and equal option sets always map to
// the same key; the option encoding is canonical (sorted exclusions,
// fixed field order) so field ordering in the caller cannot split keys.
type KeyGenerator struct {
	namespace string
}

// NewKeyGenerator creates a KeyGenerator. The namespace separates
// engines sharing one cache backend; empty is fine for the common
// one-engine case.
func NewKeyGenerator(namespace string) *KeyGenerator {
	return &KeyGenerator{namespace: namespace}
}

// Generate builds the cache key for a detection query.
func (kg *KeyGenerator) Generate(pos geometry.Point, opts snap.QueryOptions) string {
	var b strings.Builder
	writePoint(&b, pos)
	b.WriteString(keySeparator)
	writeOptions(&b, opts)

	sum := sha256.Sum256([]byte(b.String()))
	hash := hex.EncodeToString(sum[:])[:truncateLength]

	parts := []string{keyPrefix}
	if kg.namespace != "" {
		parts = append(parts, kg.namespace)
	}
	parts = append(parts, hash)
	return strings.Join(parts, keySeparator)
}

func writePoint(b *strings.Builder, p geometry.Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(',')
	b.WriteString(formatCoord(p.Y))
}

func writeOptions(b *strings.Builder, opts snap.QueryOptions) {
	if opts.Center != nil {
		writePoint(b, *opts.Center)
	}
	b.WriteByte(';')
	b.WriteString(formatCoord(opts.Radius))
	b.WriteByte(';')
	if opts.Bounds != nil {
		writePoint(b, opts.Bounds.Min)
		b.WriteByte('-')
		writePoint(b, opts.Bounds.Max)
	}
	b.WriteByte(';')
	b.WriteString(encodeExcludes(opts.ExcludeTypes))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(opts.MinPriority))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(opts.MaxResults))
}

// encodeExcludes renders the exclusion set sorted and deduplicated so
// {grid, endpoint} and {endpoint, grid, endpoint} encode identically.
func encodeExcludes(types []snap.PointType) string {
	if len(types) == 0 {
		return ""
	}
	seen := make(map[snap.PointType]struct{}, len(types))
	uniq := make([]int, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, int(t))
	}
	sort.Ints(uniq)

	parts := make([]string, len(uniq))
	for i, t := range uniq {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
