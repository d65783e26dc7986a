// SPDX-License-Identifier: MPL-2.0

package preflight

import (
	"context"
	"errors"
	"testing"
)

func stubNodeVersion(t *testing.T, out string, err error) {
	t.Helper()
	orig := nodeVersion
	nodeVersion = func(context.Context) (string, error) { return out, err }
	t.Cleanup(func() { nodeVersion = orig })
}

func TestCheckNode(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr error
	}{
		{"minimum", "v7.6.0\n", "v7.6.0", nil},
		{"modern", "v20.11.1\n", "v20.11.1", nil},
		{"too old", "v6.17.1\n", "v6.17.1", ErrNodeTooOld},
		{"just below", "v7.5.9", "v7.5.9", ErrNodeTooOld},
		{"garbage", "not a version", "not a version", ErrNodeTooOld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubNodeVersion(t, tt.out, nil)

			got, err := CheckNode(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckNode() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CheckNode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckNode_Message(t *testing.T) {
	stubNodeVersion(t, "v6.0.0\n", nil)

	_, err := CheckNode(context.Background())
	want := "Node.js 7.6+ is required to run. You have v6.0.0."
	if err == nil || err.Error() != want {
		t.Errorf("CheckNode() error = %v, want %q", err, want)
	}
}

func TestCheckNode_Missing(t *testing.T) {
	stubNodeVersion(t, "", errors.New(`exec: "node": executable file not found in $PATH`))

	if _, err := CheckNode(context.Background()); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("CheckNode() error = %v, want ErrNodeNotFound", err)
	}
}
