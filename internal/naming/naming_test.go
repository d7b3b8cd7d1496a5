package naming

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		want      string
	}{
		{name: "first.last with domain", principal: "jane.doe@example.com", want: "janedo"},
		{name: "plain login with domain", principal: "bob@example.com", want: "bob"},
		{name: "plain login", principal: "alice", want: "alice"},
		{name: "long first name", principal: "bartholomewxyz.smith@corp", want: "bartholomewsm"},
		{name: "short last name", principal: "jo.x", want: "jox"},
		{name: "long login", principal: "svc-provisioner-account", want: "svc-provisio"},
		{name: "exactly twelve", principal: "abcdefghijkl@x", want: "abcdefghijkl"},
		{name: "extra dots use first two segments", principal: "a.b.c", want: "ab"},
		{name: "multibyte at login boundary", principal: "aaaaaaaaaaaé@corp", want: "aaaaaaaaaaaé"},
		{name: "multibyte in first and last", principal: "aaaaaaaaaaé.müller@corp", want: "aaaaaaaaaaémü"},
		{name: "long multibyte login", principal: "ééééééééééééé", want: "éééééééééééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrincipal(tt.principal)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "invalid UTF-8 in %q", got)
		})
	}
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "janedo-123", Candidate("janedo", 123))
}

func TestAllocate_FirstFree(t *testing.T) {
	var checked []string
	exists := func(ctx context.Context, path string) (bool, error) {
		checked = append(checked, path)
		return false, nil
	}

	name, err := NewAllocator(exists, rand.New(rand.NewSource(1))).
		Allocate(context.Background(), "/DC0/vm/dev/", "jane.doe@example.com")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^janedo-\d{3}$`), name)
	require.Len(t, checked, 1)
	assert.Equal(t, "/DC0/vm/dev/"+name, checked[0])
}

func TestAllocate_RetriesUntilFree(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, path string) (bool, error) {
		calls++
		return calls < 4, nil
	}

	name, err := NewAllocator(exists, rand.New(rand.NewSource(7))).
		Allocate(context.Background(), "/DC0/vm", "bob@example.com")

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Regexp(t, `^bob-\d{3}$`, name)
}

func TestAllocate_SuffixRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	a := NewAllocator(func(context.Context, string) (bool, error) { return false, nil }, rnd)

	for i := 0; i < 500; i++ {
		n := a.suffix()
		require.GreaterOrEqual(t, n, 100)
		require.Less(t, n, 1000)
	}
}

func TestAllocate_ExistsError(t *testing.T) {
	lookupErr := errors.New("session expired")
	exists := func(ctx context.Context, path string) (bool, error) {
		return false, lookupErr
	}

	_, err := NewAllocator(exists, nil).Allocate(context.Background(), "/DC0/vm", "bob")

	assert.ErrorIs(t, err, lookupErr)
}

func TestAllocate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exists := func(ctx context.Context, path string) (bool, error) {
		cancel()
		return true, nil
	}

	_, err := NewAllocator(exists, nil).Allocate(ctx, "/DC0/vm", "bob")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllocate_EmptyPrincipal(t *testing.T) {
	_, err := NewAllocator(func(context.Context, string) (bool, error) { return false, nil }, nil).
		Allocate(context.Background(), "/DC0/vm", "@example.com")

	assert.Error(t, err)
}
