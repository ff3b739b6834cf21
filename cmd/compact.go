package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Compact compacts the .envlock database to reclaim unused space
func Compact(app *App) error {
	vault := app.Vault()

	sizeBefore := fileSize(vault.Path())

	if err := vault.Compact(); err != nil {
		return err
	}

	sizeAfter := fileSize(vault.Path())
	fmt.Fprintf(app.stdout(), "Compacted: %s -> %s\n", humanize.Bytes(sizeBefore), humanize.Bytes(sizeAfter))
	return nil
}

func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}
