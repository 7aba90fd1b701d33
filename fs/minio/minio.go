package minio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/minio/internal/errs"
	"github.com/jmgilman/go/xfer/fs/minio/internal/pathutil"
)

// mtimeMeta is the user-metadata key carrying an explicit modification time.
const mtimeMeta = "mtime"

// FS is a network-share backend over an S3 bucket.
type FS struct {
	client             *minio.Client
	bucket             string
	prefix             string
	root               string
	multipartThreshold int64
	renameConcurrency  int
}

// NewMinIO creates a network-share backend.
// Returns an error if the configuration is invalid.
func NewMinIO(cfg Config) (*FS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	m := &FS{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             pathutil.NormalizePrefix(cfg.Prefix),
		root:               cfg.Root,
		multipartThreshold: cfg.MultipartThreshold,
		renameConcurrency:  cfg.MaxRenameConcurrency,
	}
	if m.root == "" {
		m.root = DefaultRoot
	}
	if m.multipartThreshold <= 0 {
		m.multipartThreshold = 5 * 1024 * 1024
	}
	if m.renameConcurrency <= 0 {
		m.renameConcurrency = 10
	}
	return m, nil
}

// Root returns the share's path prefix.
func (m *FS) Root() string { return m.root }

// Kind returns core.KindNetwork.
func (m *FS) Kind() core.Kind { return core.KindNetwork }

// IsNative returns false.
func (m *FS) IsNative() bool { return false }

// rel strips the root from p.
func (m *FS) rel(op, p string) (string, error) {
	rel, ok := core.Rel(m.root, p)
	if !ok {
		return "", core.PathError(op, p, core.ErrOutsideRoot)
	}
	return rel, nil
}

// List returns the entries of the directory at p sorted by name.
func (m *FS) List(p string, mode core.ListMode) ([]core.Entry, error) {
	rel, err := m.rel("list", p)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	dirKey := pathutil.DirKey(m.prefix, rel)

	var entries []core.Entry
	seen := false
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: dirKey}) {
		if obj.Err != nil {
			return nil, errs.PathError("list", p, obj.Err)
		}
		seen = true
		name, isDir, ok := pathutil.ChildName(dirKey, obj.Key)
		if !ok {
			continue
		}
		if isDir {
			if mode.Has(core.ListDirs) {
				entries = append(entries, core.DirEntry(name))
			}
			continue
		}
		if !mode.Has(core.ListFiles) {
			continue
		}
		e := core.Entry{Name: name, Type: core.TypeFile, Size: obj.Size, ModTime: obj.LastModified}
		if mode.Has(core.ListNoFileSize) {
			e.Size = core.SizeUnknown
		}
		entries = append(entries, e)
	}

	if !seen && rel != "" {
		return nil, core.PathError("list", p, fs.ErrNotExist)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Open opens the object at p for streaming reads.
func (m *FS) Open(p string) (core.File, error) {
	rel, err := m.rel("open", p)
	if err != nil {
		return nil, err
	}
	return newReadFile(context.Background(), m, pathutil.Key(m.prefix, rel), p)
}

// Create returns a handle whose contents are uploaded on Close. Parent
// directories are implicit.
func (m *FS) Create(p string) (core.File, error) {
	rel, err := m.rel("create", p)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		return nil, core.PathError("create", p, fs.ErrInvalid)
	}
	return newWriteFile(m, pathutil.Key(m.prefix, rel), p), nil
}

// Stat returns the entry describing p. Directories are recognised by their
// marker object or by having children.
func (m *FS) Stat(p string) (core.Entry, error) {
	rel, err := m.rel("stat", p)
	if err != nil {
		return core.Entry{}, err
	}
	if rel == "" {
		return core.DirEntry(""), nil
	}

	ctx := context.Background()
	info, err := m.client.StatObject(ctx, m.bucket, pathutil.Key(m.prefix, rel), minio.StatObjectOptions{})
	if err == nil {
		return core.Entry{Name: core.Base(p), Type: core.TypeFile, Size: info.Size, ModTime: info.LastModified}, nil
	}
	if !errors.Is(errs.Translate(err), fs.ErrNotExist) {
		return core.Entry{}, errs.PathError("stat", p, err)
	}

	isDir, err := m.isDir(ctx, rel)
	if err != nil {
		return core.Entry{}, errs.PathError("stat", p, err)
	}
	if !isDir {
		return core.Entry{}, core.PathError("stat", p, fs.ErrNotExist)
	}
	return core.DirEntry(core.Base(p)), nil
}

// isDir reports whether rel has a marker object or any child.
func (m *FS) isDir(ctx context.Context, rel string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dirKey := pathutil.DirKey(m.prefix, rel)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: dirKey, MaxKeys: 1}) {
		if obj.Err != nil {
			return false, obj.Err
		}
		return true, nil
	}
	return false, nil
}

// Mkdir writes the directory marker for p. It fails if p already exists.
func (m *FS) Mkdir(p string) error {
	ok, err := m.Exists(p)
	if err != nil {
		return err
	}
	if ok {
		return core.PathError("mkdir", p, fs.ErrExist)
	}
	rel, err := m.rel("mkdir", p)
	if err != nil {
		return err
	}
	return m.putMarker(context.Background(), p, rel)
}

// MkdirAll writes markers for p and each of its ancestors.
func (m *FS) MkdirAll(p string) error {
	rel, err := m.rel("mkdir", p)
	if err != nil {
		return err
	}
	ctx := context.Background()
	parts := strings.Split(rel, "/")
	for i := range parts {
		if parts[i] == "" {
			continue
		}
		if err := m.putMarker(ctx, p, strings.Join(parts[:i+1], "/")); err != nil {
			return err
		}
	}
	return nil
}

func (m *FS) putMarker(ctx context.Context, p, rel string) error {
	_, err := m.client.PutObject(ctx, m.bucket, pathutil.DirKey(m.prefix, rel), strings.NewReader(""), 0,
		minio.PutObjectOptions{ContentType: "application/x-directory"})
	return errs.PathError("mkdir", p, err)
}

// RemoveFile deletes the object at p. Unlike a bare S3 delete it reports
// fs.ErrNotExist for a missing object.
func (m *FS) RemoveFile(p string) error {
	e, err := m.Stat(p)
	if err != nil {
		return err
	}
	if e.IsDir() {
		return core.PathError("remove", p, fs.ErrInvalid)
	}
	rel, _ := m.rel("remove", p)
	err = m.client.RemoveObject(context.Background(), m.bucket, pathutil.Key(m.prefix, rel), minio.RemoveObjectOptions{})
	return errs.PathError("remove", p, err)
}

// RemoveDir deletes the marker of the empty directory at p.
func (m *FS) RemoveDir(p string) error {
	e, err := m.Stat(p)
	if err != nil {
		return err
	}
	if !e.IsDir() {
		return core.PathError("rmdir", p, fs.ErrInvalid)
	}
	empty, err := m.IsDirEmpty(p)
	if err != nil {
		return err
	}
	if !empty {
		return core.PathError("rmdir", p, core.ErrNotEmpty)
	}
	rel, _ := m.rel("rmdir", p)
	err = m.client.RemoveObject(context.Background(), m.bucket, pathutil.DirKey(m.prefix, rel), minio.RemoveObjectOptions{})
	return errs.PathError("rmdir", p, err)
}

// RenameFile copies the object to dst and removes the source.
func (m *FS) RenameFile(src, dst string) error {
	if err := m.Clone(src, dst); err != nil {
		return err
	}
	rel, _ := m.rel("rename", src)
	err := m.client.RemoveObject(context.Background(), m.bucket, pathutil.Key(m.prefix, rel), minio.RemoveObjectOptions{})
	return errs.PathError("rename", src, err)
}

// RenameDir moves every object below src to dst.
//
// The move is not atomic. A failure during the copy phase leaves some
// objects duplicated; a failure during the delete phase leaves objects at
// both locations.
func (m *FS) RenameDir(src, dst string) error {
	if core.Within(src, dst) {
		return core.PathError("rename", dst, fs.ErrInvalid)
	}
	srcRel, err := m.rel("rename", src)
	if err != nil {
		return err
	}
	dstRel, err := m.rel("rename", dst)
	if err != nil {
		return err
	}
	ctx := context.Background()

	copied, err := m.parallelCopy(ctx, pathutil.DirKey(m.prefix, srcRel), pathutil.DirKey(m.prefix, dstRel))
	if err != nil {
		return errs.PathError("rename", src, err)
	}
	if len(copied) == 0 {
		return core.PathError("rename", src, fs.ErrNotExist)
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, key := range copied {
		toDelete <- minio.ObjectInfo{Key: key}
	}
	close(toDelete)

	for rerr := range m.client.RemoveObjects(ctx, m.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return errs.PathError("rename", src, rerr.Err)
		}
	}
	return nil
}

// parallelCopy copies every object below oldPrefix to newPrefix with a
// bounded worker pool and returns the source keys that were copied.
func (m *FS) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.renameConcurrency)

	var mu sync.Mutex
	var copied []string

	for obj := range m.client.ListObjects(egCtx, m.bucket, minio.ListObjectsOptions{Prefix: oldPrefix, Recursive: true}) {
		if obj.Err != nil {
			_ = eg.Wait()
			return copied, obj.Err
		}

		key := obj.Key
		eg.Go(func() error {
			newKey := newPrefix + strings.TrimPrefix(key, oldPrefix)
			_, err := m.client.CopyObject(egCtx,
				minio.CopyDestOptions{Bucket: m.bucket, Object: newKey},
				minio.CopySrcOptions{Bucket: m.bucket, Object: key})
			if err != nil {
				return fmt.Errorf("copy object %s to %s: %w", key, newKey, err)
			}
			mu.Lock()
			copied = append(copied, key)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, fmt.Errorf("parallel copy failed: %w", err)
	}
	return copied, nil
}

// Clone copies the object at src to dst server-side.
func (m *FS) Clone(src, dst string) error {
	srcRel, err := m.rel("copy", src)
	if err != nil {
		return err
	}
	dstRel, err := m.rel("copy", dst)
	if err != nil {
		return err
	}
	_, err = m.client.CopyObject(context.Background(),
		minio.CopyDestOptions{Bucket: m.bucket, Object: pathutil.Key(m.prefix, dstRel)},
		minio.CopySrcOptions{Bucket: m.bucket, Object: pathutil.Key(m.prefix, srcRel)})
	return errs.PathError("copy", src, err)
}

// Exists reports whether p names an object or a directory.
func (m *FS) Exists(p string) (bool, error) {
	_, err := m.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDirEmpty reports whether the directory at p has children other than its
// own marker.
func (m *FS) IsDirEmpty(p string) (bool, error) {
	rel, err := m.rel("readdir", p)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dirKey := pathutil.DirKey(m.prefix, rel)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: dirKey}) {
		if obj.Err != nil {
			return false, errs.PathError("readdir", p, obj.Err)
		}
		if obj.Key != dirKey {
			return false, nil
		}
	}
	return true, nil
}

// Timestamp returns the explicit mtime recorded by SetTimestamp, falling
// back to the object's LastModified.
func (m *FS) Timestamp(p string) (core.Timestamp, error) {
	rel, err := m.rel("stat", p)
	if err != nil {
		return core.Timestamp{}, err
	}
	info, err := m.client.StatObject(context.Background(), m.bucket, pathutil.Key(m.prefix, rel), minio.StatObjectOptions{})
	if err != nil {
		return core.Timestamp{}, errs.PathError("stat", p, err)
	}

	mt := info.LastModified
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, mtimeMeta) {
			if parsed, perr := time.Parse(time.RFC3339Nano, v); perr == nil {
				mt = parsed
			}
		}
	}
	return core.Timestamp{Created: mt, Modified: mt, Accessed: mt}, nil
}

// SetTimestamp records stamp.Modified as object metadata through a
// self-copy. Object stores cannot rewrite LastModified.
func (m *FS) SetTimestamp(p string, stamp core.Timestamp) error {
	if stamp.Modified.IsZero() {
		return nil
	}
	rel, err := m.rel("chtimes", p)
	if err != nil {
		return err
	}
	key := pathutil.Key(m.prefix, rel)
	_, err = m.client.CopyObject(context.Background(),
		minio.CopyDestOptions{
			Bucket:          m.bucket,
			Object:          key,
			ReplaceMetadata: true,
			UserMetadata:    map[string]string{mtimeMeta: stamp.Modified.UTC().Format(time.RFC3339Nano)},
		},
		minio.CopySrcOptions{Bucket: m.bucket, Object: key})
	return errs.PathError("chtimes", p, err)
}

// Compile-time interface checks.
var (
	_ core.Backend     = (*FS)(nil)
	_ core.Cloner      = (*FS)(nil)
	_ core.Timestamper = (*FS)(nil)
)
