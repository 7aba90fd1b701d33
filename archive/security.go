package archive

import (
	"github.com/jmgilman/go/xfer/archive/internal/validate"
	"github.com/jmgilman/go/xfer/errors"
)

// Default extraction limits.
const (
	DefaultMaxFiles    = 100000
	DefaultMaxSize     = 64 << 30
	DefaultMaxFileSize = 32 << 30
)

// ExtractOptions bounds what an extraction may write. Zero disables a limit.
type ExtractOptions struct {
	// MaxFiles is the maximum number of entries in the archive.
	MaxFiles int

	// MaxSize is the maximum total uncompressed size.
	MaxSize int64

	// MaxFileSize is the maximum uncompressed size of any single entry.
	MaxFileSize int64
}

// DefaultExtractOptions returns the default extraction limits.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		MaxFiles:    DefaultMaxFiles,
		MaxSize:     DefaultMaxSize,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// FileInfo is the member metadata validators see.
type FileInfo struct {
	Name string
	Size int64
}

// Stats summarises a whole archive.
type Stats struct {
	TotalFiles int
	TotalSize  int64
}

// Validator checks members and archives before extraction.
type Validator interface {
	ValidatePath(name string) error
	ValidateFile(info FileInfo) error
	ValidateArchive(stats Stats) error
}

// SizeValidator enforces per-file and total size limits.
type SizeValidator struct {
	MaxFileSize  int64
	MaxTotalSize int64
}

// ValidatePath accepts every name.
func (v *SizeValidator) ValidatePath(string) error { return nil }

// ValidateFile rejects members larger than MaxFileSize.
func (v *SizeValidator) ValidateFile(info FileInfo) error {
	if v.MaxFileSize > 0 && info.Size > v.MaxFileSize {
		return errors.WrapWithContext(ErrLimitExceeded, errors.CodeArchive, "archive member too large",
			map[string]interface{}{"name": info.Name, "size": info.Size, "limit": v.MaxFileSize})
	}
	return nil
}

// ValidateArchive rejects archives larger than MaxTotalSize.
func (v *SizeValidator) ValidateArchive(stats Stats) error {
	if v.MaxTotalSize > 0 && stats.TotalSize > v.MaxTotalSize {
		return errors.WrapWithContext(ErrLimitExceeded, errors.CodeArchive, "archive too large",
			map[string]interface{}{"size": stats.TotalSize, "limit": v.MaxTotalSize})
	}
	return nil
}

// FileCountValidator limits the number of members.
type FileCountValidator struct {
	MaxFiles int
}

// ValidatePath accepts every name.
func (v *FileCountValidator) ValidatePath(string) error { return nil }

// ValidateFile accepts every member.
func (v *FileCountValidator) ValidateFile(FileInfo) error { return nil }

// ValidateArchive rejects archives with more than MaxFiles members.
func (v *FileCountValidator) ValidateArchive(stats Stats) error {
	if v.MaxFiles > 0 && stats.TotalFiles > v.MaxFiles {
		return errors.WrapWithContext(ErrLimitExceeded, errors.CodeArchive, "too many archive members",
			map[string]interface{}{"files": stats.TotalFiles, "limit": v.MaxFiles})
	}
	return nil
}

// NameValidator rejects member names that escape the destination.
type NameValidator struct {
	paths *validate.PathValidator
}

// NewNameValidator returns a NameValidator that allows hidden files.
func NewNameValidator() *NameValidator {
	return &NameValidator{paths: validate.NewPathValidator()}
}

// ValidatePath rejects absolute, traversing or unrepresentable names.
func (v *NameValidator) ValidatePath(name string) error {
	if err := v.paths.ValidatePath(name); err != nil {
		return errors.WrapWithContext(err, errors.CodeArchive, "invalid archive member name",
			map[string]interface{}{"name": name})
	}
	return nil
}

// ValidateFile accepts every member.
func (v *NameValidator) ValidateFile(FileInfo) error { return nil }

// ValidateArchive accepts every archive.
func (v *NameValidator) ValidateArchive(Stats) error { return nil }

// ValidatorChain runs validators in order and stops at the first failure.
type ValidatorChain struct {
	validators []Validator
}

// NewValidatorChain creates a chain of validators.
func NewValidatorChain(validators ...Validator) *ValidatorChain {
	return &ValidatorChain{validators: validators}
}

// ForOptions builds the chain Unzip applies for opts.
func ForOptions(opts ExtractOptions) *ValidatorChain {
	return NewValidatorChain(
		NewNameValidator(),
		&SizeValidator{MaxFileSize: opts.MaxFileSize, MaxTotalSize: opts.MaxSize},
		&FileCountValidator{MaxFiles: opts.MaxFiles},
	)
}

// ValidatePath runs every validator's ValidatePath.
func (vc *ValidatorChain) ValidatePath(name string) error {
	for _, v := range vc.validators {
		if err := v.ValidatePath(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFile runs every validator's ValidateFile.
func (vc *ValidatorChain) ValidateFile(info FileInfo) error {
	for _, v := range vc.validators {
		if err := v.ValidateFile(info); err != nil {
			return err
		}
	}
	return nil
}

// ValidateArchive runs every validator's ValidateArchive.
func (vc *ValidatorChain) ValidateArchive(stats Stats) error {
	for _, v := range vc.validators {
		if err := v.ValidateArchive(stats); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every entry and the archive totals.
func (vc *ValidatorChain) Validate(entries []Entry) error {
	var stats Stats
	for _, e := range entries {
		if err := vc.ValidatePath(e.Name); err != nil {
			return err
		}
		if e.IsDir {
			continue
		}
		if err := vc.ValidateFile(FileInfo{Name: e.Name, Size: e.Size}); err != nil {
			return err
		}
		stats.TotalFiles++
		stats.TotalSize += e.Size
	}
	return vc.ValidateArchive(stats)
}

// ValidateEntryName returns a CodeArchive error if name is not a safe
// relative member name.
func ValidateEntryName(name string) error {
	return NewNameValidator().ValidatePath(name)
}
