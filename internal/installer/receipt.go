// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ReceiptFileName is written into the install root after every successful install.
const ReceiptFileName = ".weex-install.toml"

// Receipt records what the last successful install put on disk.
type Receipt struct {
	Name        string    `toml:"name"`
	Version     string    `toml:"version"`
	Previous    string    `toml:"previous,omitempty"`
	Registry    string    `toml:"registry"`
	Tarball     string    `toml:"tarball,omitempty"`
	Integrity   string    `toml:"integrity,omitempty"`
	InstalledAt time.Time `toml:"installed_at"`
}

// ReceiptPath returns the receipt location for an install root.
func ReceiptPath(root string) string {
	return filepath.Join(root, ReceiptFileName)
}

// ReadReceipt loads the receipt from root. A missing receipt returns (nil, nil).
func ReadReceipt(root string) (*Receipt, error) {
	data, err := os.ReadFile(ReceiptPath(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading install receipt: %w", err)
	}

	var r Receipt
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing install receipt %s: %w", ReceiptPath(root), err)
	}
	return &r, nil
}

func writeReceipt(root string, r *Receipt) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding install receipt: %w", err)
	}
	if err := os.WriteFile(ReceiptPath(root), data, 0o644); err != nil {
		return fmt.Errorf("writing install receipt: %w", err)
	}
	return nil
}
