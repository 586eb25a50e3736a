package cmd

import (
	"context"
	"io"

	"github.com/agubarev/orgtree/pkg/client"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/spf13/cobra"
)

// flags shared by the inspection commands
var (
	entityName string
	remote     bool
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&entityName, "entity", "e", string(tree.EntityMenu), "forest to inspect: menu, dept, dict or post")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from a running server at client.url instead of the local store")
}

// loadForest reads the selected forest either from a running server
// or straight from the configured store
func loadForest(ctx context.Context) (*tree.Forest, error) {
	e, err := tree.ParseEntity(entityName)
	if err != nil {
		return nil, err
	}

	logger, err := commandLogger()
	if err != nil {
		return nil, err
	}

	var (
		repo   tree.Repository
		closer io.Closer
	)

	if remote {
		cl, err := client.New(cfg.Client.URL, e, cfg.Client.Timeout)
		if err != nil {
			return nil, err
		}

		if err = cl.SetLogger(logger); err != nil {
			return nil, err
		}

		repo = cl
	} else {
		c, err := openCore(ctx, logger)
		if err != nil {
			return nil, err
		}

		closer = c

		if repo, err = c.Manager(e); err != nil {
			c.Close()
			return nil, err
		}
	}

	if closer != nil {
		defer closer.Close()
	}

	return repo.List(ctx)
}
