package util_test

import (
	"testing"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestHashStrings(t *testing.T) {
	a := assert.New(t)

	a.Equal(util.HashStrings("a", "b"), util.HashStrings("a", "b"))
	a.NotEqual(util.HashStrings("ab", "c"), util.HashStrings("a", "bc"))
	a.NotEqual(util.HashStrings("a"), util.HashStrings("a", ""))
	a.Equal(util.HashKey([]byte("orgtree")), util.HashKey([]byte("orgtree")))
}
