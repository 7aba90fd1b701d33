package config

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/billy"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/image"
	"github.com/jmgilman/go/xfer/fs/minio"
	"github.com/jmgilman/go/xfer/upload"
)

// hostRoot is the root of the scratch backend image mounts read their zip
// file through.
const hostRoot = "host:/"

// NewBackend builds the backend m describes. The returned closer, when not
// nil, releases resources held by the backend.
func NewBackend(m MountConfig) (core.Backend, io.Closer, error) {
	root := m.RootPath()

	switch m.Kind {
	case "native":
		return billy.NewLocal(m.Dir, billy.WithRoot(root)), nil, nil
	case "removable":
		return billy.NewLocal(m.Dir, billy.WithRoot(root), billy.WithKind(core.KindRemovable)), nil, nil
	case "memory":
		return billy.NewMemory(billy.WithRoot(root)), nil, nil
	case "image":
		host := billy.NewLocal(filepath.Dir(m.File), billy.WithRoot(hostRoot))
		img, err := image.Mount(host, core.Join(hostRoot, filepath.Base(m.File)), image.WithRoot(root))
		if err != nil {
			return nil, nil, errors.WrapWithContext(err, errors.CodeBackend, "failed to mount image",
				map[string]interface{}{"mount": m.Name, "file": m.File})
		}
		return img, img, nil
	case "minio":
		b, err := minio.NewMinIO(minio.Config{
			Endpoint:  m.Endpoint,
			Bucket:    m.Bucket,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Prefix:    m.Prefix,
			Root:      root,
		})
		if err != nil {
			return nil, nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to create network mount",
				map[string]interface{}{"mount": m.Name})
		}
		return b, nil, nil
	default:
		return nil, nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unknown mount kind %q", m.Kind), "mount", m.Name)
	}
}

// NewTransport builds the upload transport l describes.
func NewTransport(ctx context.Context, l LocationConfig) (upload.Transport, error) {
	switch l.Kind {
	case "http":
		base := strings.TrimSuffix(l.URL, "/")
		if l.Prefix != "" {
			base += "/" + strings.Trim(l.Prefix, "/")
		}
		return &upload.HTTPTransport{BaseURL: base, Username: l.Username, Password: l.Password}, nil
	case "minio":
		return upload.NewMinioTransport(upload.MinioConfig{
			Endpoint:  l.Endpoint,
			Bucket:    l.Bucket,
			AccessKey: l.AccessKey,
			SecretKey: l.SecretKey,
			UseSSL:    l.UseSSL,
			Prefix:    l.Prefix,
		})
	case "s3":
		return upload.NewS3Transport(ctx, upload.S3Config{
			Endpoint:  l.Endpoint,
			Bucket:    l.Bucket,
			Region:    l.Region,
			AccessKey: l.AccessKey,
			SecretKey: l.SecretKey,
			Prefix:    l.Prefix,
		})
	default:
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unknown location kind %q", l.Kind), "location", l.Name)
	}
}

// Location returns the upload location called name.
func (c *Config) Location(name string) (LocationConfig, error) {
	for _, l := range c.Locations {
		if l.Name == name {
			return l, nil
		}
	}
	return LocationConfig{}, errors.WithContext(errors.New(errors.CodeNotFound, "unknown location"), "name", name)
}

// Registry holds the backends of every configured mount.
type Registry struct {
	backends map[string]core.Backend
	closers  []io.Closer
}

// NewRegistry builds a backend for each mount. On failure the backends
// already built are released.
func NewRegistry(mounts []MountConfig) (*Registry, error) {
	r := &Registry{backends: make(map[string]core.Backend, len(mounts))}
	for _, m := range mounts {
		b, closer, err := NewBackend(m)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.Add(m.Name, b, closer)
	}
	return r, nil
}

// Add registers b under name. closer may be nil.
func (r *Registry) Add(name string, b core.Backend, closer io.Closer) {
	if r.backends == nil {
		r.backends = map[string]core.Backend{}
	}
	r.backends[name] = b
	if closer != nil {
		r.closers = append(r.closers, closer)
	}
}

// Backend returns the backend mounted as name.
func (r *Registry) Backend(name string) (core.Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Names returns the mount names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve splits a "mount:path" argument into its backend and the full
// backend path. "sd:dir/a.txt", "sd:/dir/a.txt" and, for a mount rooted at
// "sd:/", the literal path all resolve the same way. An empty path is the
// root.
func (r *Registry) Resolve(arg string) (core.Backend, string, error) {
	i := strings.IndexByte(arg, ':')
	if i <= 0 {
		return nil, "", errors.WithContext(
			errors.New(errors.CodeInvalidInput, "path must have the form mount:path"), "arg", arg)
	}

	b, ok := r.backends[arg[:i]]
	if !ok {
		return nil, "", errors.WithContextMap(errors.New(errors.CodeNotFound, "unknown mount"),
			map[string]interface{}{"mount": arg[:i], "mounts": r.Names()})
	}
	return b, core.Join(b.Root(), strings.TrimLeft(arg[i+1:], "/")), nil
}

// Close releases every backend that holds resources.
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return stderrors.Join(errs...)
}
