package commands

import (
	"context"

	"github.com/jzebedee/bz2portable/pkg/kv"
	"github.com/jzebedee/bz2portable/pkg/manifest"
	"github.com/jzebedee/bz2portable/pkg/storage"
)

func openStore(ctx context.Context, url string) (storage.FileStore, error) {
	if url == "" {
		url = globalConfig.StoreURL()
	}
	return storage.OpenURL(ctx, url, storage.Options{
		Region:       globalConfig.Store.Region,
		Endpoint:     globalConfig.Store.Endpoint,
		UploadBuffer: globalConfig.Capacity,
		Logger:       logger,
	})
}

// openManifest opens the manifest database. The returned func closes it.
func openManifest() (*manifest.Manifest, func() error, error) {
	db, err := kv.NewBadger(kv.BadgerOptions{
		Dir:      globalConfig.Manifest.Dir,
		InMemory: globalConfig.Manifest.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return manifest.New(db), db.Close, nil
}
