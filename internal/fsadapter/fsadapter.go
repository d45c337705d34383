// Package fsadapter presents a VernamFS volume as a write-only FUSE mount.
// Every path other than the root appears as a write-only regular file; the
// adapter never serves reads, listings, or directory mutation, forwarding
// only opens, writes, and releases into the underlying engine.
package fsadapter

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

const (
	rootInode fuseops.InodeID = fuseops.RootInodeID
)

// attrExpiration is how long the kernel may cache inode attributes and
// lookups before re-querying. Short, since a write-only filesystem with no
// pre-existing directory listing has nothing worth caching long.
const attrExpiration = time.Second

// FS implements fuseops.FileSystem over a single [vernamfs.Engine]. Only one
// file may be open at a time; a second concurrent open fails with
// [vernamfs.ErrBusy] translated to syscall.EBUSY.
type FS struct {
	fuseutil.NotImplementedFileSystem

	mu sync.Mutex

	engine *vernamfs.Engine

	// openHandle is non-zero while a write session is outstanding. It also
	// identifies which inode owns the handle, since only one may exist.
	openHandle fuseops.HandleID
	openInode  fuseops.InodeID
	openPath   string

	// childInodes maps a name looked up under the root to a stable inode
	// number, assigned on first lookup so repeat opens of the same path
	// resolve to the same inode for the lifetime of the mount.
	childInodes map[string]fuseops.InodeID
	nextInode   fuseops.InodeID

	nextHandle fuseops.HandleID
}

// New wraps engine for mounting. engine must already be loaded
// ([vernamfs.Load]); the adapter never calls [vernamfs.Init].
func New(engine *vernamfs.Engine) *FS {
	return &FS{
		engine:      engine,
		childInodes: make(map[string]fuseops.InodeID),
		nextInode:   rootInode + 1,
	}
}

func (fs *FS) StatFS(_ context.Context, op *fuseops.StatFSOp) error {
	hdr := fs.engine.Header()

	op.BlockSize = uint32(hdr.Padding)
	if hdr.DataPtr < hdr.Length {
		op.BlocksFree = (hdr.Length - hdr.DataPtr) / hdr.Padding
	}
	op.Blocks = hdr.Length / hdr.Padding
	op.BlocksAvailable = op.BlocksFree
	op.IoSize = 64 * 1024

	return nil
}

func (fs *FS) LookUpInode(_ context.Context, op *fuseops.LookUpInodeOp) error {
	if op.Parent != rootInode {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	inode, ok := fs.childInodes[op.Name]
	if !ok {
		inode = fs.nextInode
		fs.nextInode++
		fs.childInodes[op.Name] = inode
	}

	now := time.Now()
	op.Entry = fuseops.ChildInodeEntry{
		Child:                inode,
		Attributes:           fileAttributes(now),
		AttributesExpiration: now.Add(attrExpiration),
		EntryExpiration:      now.Add(attrExpiration),
	}

	return nil
}

func (fs *FS) GetInodeAttributes(_ context.Context, op *fuseops.GetInodeAttributesOp) error {
	now := time.Now()
	op.AttributesExpiration = now.Add(attrExpiration)

	if op.Inode == rootInode {
		op.Attributes = dirAttributes(now)
		return nil
	}

	op.Attributes = fileAttributes(now)

	return nil
}

func (fs *FS) SetInodeAttributes(_ context.Context, op *fuseops.SetInodeAttributesOp) error {
	// ftruncate and friends land here; a write-only append-only file has
	// nothing to truncate to. Accept silently so editors/tools that probe
	// attributes before writing don't fail outright.
	now := time.Now()
	op.AttributesExpiration = now.Add(attrExpiration)
	op.Attributes = fileAttributes(now)

	return nil
}

func (fs *FS) ForgetInode(_ context.Context, op *fuseops.ForgetInodeOp) error {
	return nil
}

// CreateFile handles O_CREAT opens, which the kernel routes here instead of
// OpenFile when it believes the path doesn't exist yet.
func (fs *FS) CreateFile(_ context.Context, op *fuseops.CreateFileOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	inode, ok := fs.childInodes[op.Name]
	if !ok {
		inode = fs.nextInode
		fs.nextInode++
		fs.childInodes[op.Name] = inode
	}

	now := time.Now()
	op.Entry = fuseops.ChildInodeEntry{
		Child:                inode,
		Attributes:           fileAttributes(now),
		AttributesExpiration: now.Add(attrExpiration),
		EntryExpiration:      now.Add(attrExpiration),
	}

	handle, err := fs.openWriteSession(op.Name, inode)
	if err != nil {
		return err
	}

	op.Handle = handle

	return nil
}

// OpenFile handles opens of paths the kernel believes already exist. Since
// this filesystem never reports file sizes or listings truthfully enough
// for the kernel to know that, most opens arrive here rather than via
// CreateFile; either way only a write-only open succeeds.
func (fs *FS) OpenFile(_ context.Context, op *fuseops.OpenFileOp) error {
	if op.OpenFlags&os.O_WRONLY == 0 {
		return vernamfs.ErrReadOnlyRequested
	}

	if op.OpenFlags&(os.O_RDONLY|os.O_RDWR|os.O_APPEND) != 0 {
		return vernamfs.ErrReadOnlyRequested
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.pathForInode(op.Inode)

	handle, err := fs.openWriteSession(path, op.Inode)
	if err != nil {
		return err
	}

	op.Handle = handle
	op.KeepPageCache = false

	return nil
}

// openWriteSession starts the one outstanding write session this adapter
// ever allows. Caller must hold fs.mu.
func (fs *FS) openWriteSession(path string, inode fuseops.InodeID) (fuseops.HandleID, error) {
	if fs.openHandle != 0 {
		return 0, syscall.EBUSY
	}

	if err := fs.engine.OpenEntry(path); err != nil {
		if errors.Is(err, vernamfs.ErrBusy) {
			return 0, syscall.EBUSY
		}

		return 0, err
	}

	fs.nextHandle++
	fs.openHandle = fs.nextHandle
	fs.openInode = inode
	fs.openPath = path

	return fs.openHandle, nil
}

func (fs *FS) WriteFile(_ context.Context, op *fuseops.WriteFileOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if op.Handle != fs.openHandle || fs.openHandle == 0 {
		return fuse.EIO
	}

	// Offset is ignored: the engine is append-only and every byte in a
	// mounted write-only file must arrive in sequential order, per the
	// single-writer write-engine contract.
	_, err := fs.engine.Write(op.Data)

	return err
}

func (fs *FS) FlushFile(_ context.Context, op *fuseops.FlushFileOp) error {
	return nil
}

func (fs *FS) ReleaseFileHandle(_ context.Context, op *fuseops.ReleaseFileHandleOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if op.Handle != fs.openHandle {
		return nil
	}

	if err := fs.engine.CloseEntry(); err != nil {
		return err
	}

	if err := fs.engine.PersistHeader(); err != nil {
		return err
	}

	fs.openHandle = 0
	fs.openInode = 0
	fs.openPath = ""

	return nil
}

func (fs *FS) pathForInode(inode fuseops.InodeID) string {
	for name, ino := range fs.childInodes {
		if ino == inode {
			return name
		}
	}

	return ""
}

func fileAttributes(now time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink: 1,
		Mode:  0o200,
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
}

func dirAttributes(now time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink: 1,
		Mode:  os.ModeDir | 0o100,
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
}
