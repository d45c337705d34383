package fsadapter

import (
	"context"
	"fmt"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// MountedFS is a live FUSE mount of a [vernamfs.Engine]. Call Join to block
// until it is unmounted, and Unmount to initiate unmounting.
type MountedFS struct {
	mfs *fuse.MountedFileSystem
}

// Mount attaches the host adapter for engine at mountpoint. The volume must
// already be loaded and the caller retains ownership of engine's backing
// store; Unmount does not close it.
func Mount(engine *vernamfs.Engine, mountpoint string) (*MountedFS, error) {
	fs := New(engine)
	server := fuseutil.NewFileSystemServer(fs)

	mfs, err := fuse.Mount(mountpoint, server, &fuse.MountConfig{
		FSName:   "vernamfs",
		ReadOnly: false,
		Options: map[string]string{
			"allow_other": "",
		},
		// Every open must reach this adapter: it is the only place the
		// single-outstanding-write-session check is enforced.
		EnableNoOpenSupport: false,
	})
	if err != nil {
		return nil, fmt.Errorf("fsadapter: mount: %w", err)
	}

	return &MountedFS{mfs: mfs}, nil
}

// Join blocks until the filesystem is unmounted, returning any error the
// FUSE connection reported.
func (m *MountedFS) Join(ctx context.Context) error {
	return m.mfs.Join(ctx)
}

// Unmount requests that the kernel unmount the filesystem.
func (m *MountedFS) Unmount() error {
	return fuse.Unmount(m.mfs.Dir())
}
