// Package naming derives VM names from the principal requesting a clone.
//
// Names have the form <normalized>-<n> where n is drawn from [100, 1000).
// Normalization strips any domain suffix and shortens the local part:
//
//	jane.doe@example.com → janedo
//	bob@example.com      → bob
package naming

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

const (
	// maxFirstLen and maxLastLen bound the two halves of a first.last login.
	maxFirstLen = 11
	maxLastLen  = 2
	// maxLocalLen bounds a login without a dot.
	maxLocalLen = 12

	suffixMin = 100
	suffixMax = 1000
)

// ExistsFunc reports whether a VM already occupies the inventory path.
type ExistsFunc func(ctx context.Context, path string) (bool, error)

// NormalizePrincipal shortens a principal identifier to its name prefix.
func NormalizePrincipal(principal string) string {
	local, _, _ := strings.Cut(principal, "@")

	if strings.Contains(local, ".") {
		parts := strings.Split(local, ".")
		return truncate(parts[0], maxFirstLen) + truncate(parts[1], maxLastLen)
	}

	return truncate(local, maxLocalLen)
}

// Candidate formats a name from a normalized prefix and a numeric suffix.
func Candidate(normalized string, n int) string {
	return fmt.Sprintf("%s-%d", normalized, n)
}

// Allocator picks names that are unused in a target folder.
type Allocator struct {
	exists ExistsFunc
	rnd    *rand.Rand
}

// NewAllocator creates an Allocator. A nil rnd uses the global source.
func NewAllocator(exists ExistsFunc, rnd *rand.Rand) *Allocator {
	return &Allocator{exists: exists, rnd: rnd}
}

// Allocate returns the first candidate name for principal that does not
// exist under folder. It retries until it finds one or ctx is done.
//
// The result is only free at the time of the check; a concurrent caller
// may claim the same name before it is used.
func (a *Allocator) Allocate(ctx context.Context, folder, principal string) (string, error) {
	normalized := NormalizePrincipal(principal)
	if normalized == "" {
		return "", fmt.Errorf("cannot derive a VM name from principal %q", principal)
	}

	folder = strings.TrimSuffix(folder, "/")

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := Candidate(normalized, a.suffix())
		taken, err := a.exists(ctx, folder+"/"+name)
		if err != nil {
			return "", fmt.Errorf("failed to check whether %s exists: %w", name, err)
		}
		if !taken {
			return name, nil
		}
	}
}

func (a *Allocator) suffix() int {
	if a.rnd != nil {
		return suffixMin + a.rnd.Intn(suffixMax-suffixMin)
	}
	return suffixMin + rand.Intn(suffixMax-suffixMin)
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
