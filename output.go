package makdo

import (
	"fmt"
	"io"

	"github.com/alnah/go-makdo/internal/fileutil"
)

// WriteOptions controls how WriteFile places a result.
type WriteOptions struct {
	// Source is the file the result was converted from. When set, a
	// destination modified after it is kept unless Force is true.
	Source string
	Force  bool
	// MediaDir receives Result.Media; empty uses fileutil.MediaDir of dst.
	MediaDir string
}

// WriteFile saves res to dst. The previous file, if any, is kept as
// dst~ and the new content is renamed into place only once complete.
func WriteFile(res *Result, dst string, opts WriteOptions) error {
	if opts.Source != "" && !opts.Force {
		if err := fileutil.CheckNewer(opts.Source, dst); err != nil {
			return err
		}
	}
	if len(res.Media) > 0 {
		dir := opts.MediaDir
		if dir == "" {
			dir = fileutil.MediaDir(dst)
		}
		if err := fileutil.WriteMedia(dir, res.Media); err != nil {
			return fmt.Errorf("writing media: %w", err)
		}
	}
	return fileutil.WriteAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(res.Data)
		return err
	})
}
