package util_test

import (
	"testing"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	ID   string `diff:"id"`
	Name string `diff:"name"`
	Sort int    `diff:"sort"`
}

func TestProtectedChangelog(t *testing.T) {
	a := assert.New(t)

	allowed := map[string]bool{"name": true, "sort": true}

	before := sample{ID: "1", Name: "before", Sort: 1}

	changelog, err := util.ProtectedChangelog(allowed, before, sample{ID: "1", Name: "after", Sort: 2})
	a.NoError(err)
	a.Len(changelog, 2)
	a.ElementsMatch([]string{"name", "sort"}, util.ChangedFields(changelog))

	_, err = util.ProtectedChangelog(allowed, before, sample{ID: "2", Name: "before", Sort: 1})
	a.Error(err)
	a.Contains(err.Error(), "`id` is protected")
}
