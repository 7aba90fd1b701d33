package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/xfer/archive"
	"github.com/jmgilman/go/xfer/browse"
	"github.com/jmgilman/go/xfer/config"
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
	"github.com/jmgilman/go/xfer/transfer"
)

func (a *app) mountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mounts",
		Short: "List configured mounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.registry.Names() {
				b, _ := a.registry.Backend(name)
				fmt.Fprintf(out(cmd), "%-12s %-10s %s\n", name, b.Kind(), b.Root())
			}
			return nil
		},
	}
}

func (a *app) lsCommand() *cobra.Command {
	var (
		all    bool
		bySize bool
		desc   bool
		mixed  bool
	)

	cmd := &cobra.Command{
		Use:   "ls MOUNT:PATH",
		Short: "List a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, p, err := a.registry.Resolve(args[0])
			if err != nil {
				return err
			}

			opts := browse.DefaultSortOptions()
			opts.ShowHidden = all
			opts.FoldersFirst = !mixed
			if bySize {
				opts.By = browse.SortSize
			}
			if desc {
				opts.Order = browse.Descending
			}

			view := browse.New(b, p, browse.WithSort(opts), browse.WithLogger(a.logger))
			if err := view.Scan(p); err != nil {
				return err
			}
			for _, e := range view.Entries() {
				if e.IsDir() {
					fmt.Fprintf(out(cmd), "%12s  %s/\n", "-", e.Name)
					continue
				}
				if inner := a.firstMember(cmd, b, view.Path(), e); inner != "" {
					fmt.Fprintf(out(cmd), "%12d  %s -> %s\n", e.Size, e.Name, inner)
					continue
				}
				fmt.Fprintf(out(cmd), "%12d  %s\n", e.Size, e.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "show hidden entries")
	cmd.Flags().BoolVarP(&bySize, "size", "S", false, "sort by size")
	cmd.Flags().BoolVarP(&desc, "reverse", "r", false, "reverse the name order")
	cmd.Flags().BoolVar(&mixed, "mixed", false, "do not list folders first")
	return cmd
}

// firstMember names the first file inside a zip archive so ls can show what
// it holds. Unreadable archives are listed like any other file.
func (a *app) firstMember(cmd *cobra.Command, b core.Backend, dir string, e core.Entry) string {
	if e.Ext() != "zip" {
		return ""
	}
	p := core.Join(dir, e.Name)
	name, err := archive.PeekFirstFileName(b, p)
	if err != nil {
		a.logger.Debug(cmd.Context(), "cannot read archive", "path", p, "error", err)
		return ""
	}
	return name
}

// pasteCommand builds "copy" and "move". The last argument is the
// destination directory.
func (a *app) pasteCommand(name string) *cobra.Command {
	op, verb := stash.Copy, "Copy"
	if name == "move" {
		op, verb = stash.Cut, "Move"
	}

	return &cobra.Command{
		Use:   name + " SRC... DSTDIR",
		Short: verb + " files and folders into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.selection(args[:len(args)-1], op)
			if err != nil {
				return err
			}
			dst, dstPath, err := a.registry.Resolve(args[len(args)-1])
			if err != nil {
				return err
			}
			return a.run(cmd, verb, func(s *session.Session) error {
				return a.engine.Paste(s, st, dst, dstPath)
			})
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete PATH...",
		Aliases: []string{"rm"},
		Short:   "Delete files and folders",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.selection(args, stash.Delete)
			if err != nil {
				return err
			}
			handled, err := a.engine.DeleteFast(st)
			if handled || err != nil {
				return err
			}
			return a.run(cmd, "Delete", func(s *session.Session) error {
				return a.engine.Delete(s, st)
			})
		},
	}
}

func (a *app) zipCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "zip PATH...",
		Short: "Compress files and folders into a zip archive",
		Long: `Compress the given entries into a zip archive next to them. Without
--output a single entry gets its own name with a .zip extension and several
entries get "Archive.zip".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.selection(args, stash.Copy)
			if err != nil {
				return err
			}
			var created string
			err = a.run(cmd, "Compress", func(s *session.Session) error {
				p, zerr := a.engine.Zip(s, st, output)
				created = p
				return zerr
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), created)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive name, relative to the source directory")
	return cmd
}

func (a *app) unzipCommand() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "unzip ARCHIVE...",
		Short: "Extract zip archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.selection(args, stash.Copy)
			if err != nil {
				return err
			}

			var (
				dst    core.Backend
				dstDir string
			)
			if dest != "" {
				if dst, dstDir, err = a.registry.Resolve(dest); err != nil {
					return err
				}
			}
			return a.run(cmd, "Extract", func(s *session.Session) error {
				return a.engine.Unzip(s, st, dst, dstDir)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory as MOUNT:PATH (default: next to the archive)")
	return cmd
}

func (a *app) uploadCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "upload PATH... --to LOCATION",
		Short: "Upload files and folders to a configured location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.location(to)
			if err != nil {
				return err
			}
			tr, err := config.NewTransport(cmd.Context(), loc)
			if err != nil {
				return err
			}
			st, err := a.selection(args, stash.Copy)
			if err != nil {
				return err
			}
			return a.run(cmd, "Upload", func(s *session.Session) error {
				return a.engine.Upload(s, st, tr)
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "location name (default: the only configured location)")
	return cmd
}

// location picks the named upload location, or the only one configured.
func (a *app) location(name string) (config.LocationConfig, error) {
	if name != "" {
		return a.cfg.Location(name)
	}
	switch len(a.cfg.Locations) {
	case 0:
		return config.LocationConfig{}, errors.New(errors.CodeInvalidConfig, "no upload locations configured")
	case 1:
		return a.cfg.Locations[0], nil
	default:
		names := make([]string, 0, len(a.cfg.Locations))
		for _, l := range a.cfg.Locations {
			names = append(names, l.Name)
		}
		return config.LocationConfig{}, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "several locations configured, pick one with --to"),
			"locations", strings.Join(names, ", "))
	}
}

func (a *app) hashCommand() *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "hash PATH",
		Short: "Print the digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := transfer.ParseHashAlgo(algo)
			if err != nil {
				return err
			}
			b, p, err := a.registry.Resolve(args[0])
			if err != nil {
				return err
			}

			var digest string
			err = a.run(cmd, "Hash", func(s *session.Session) error {
				d, herr := a.engine.Hash(s, b, p, h)
				digest = d
				return herr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s  %s\n", digest, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&algo, "algo", "sha256", "digest: crc32, md5, sha1 or sha256")
	return cmd
}
