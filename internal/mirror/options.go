package mirror

import "path/filepath"

// Options configures a mirror run.
type Options struct {
	SourceRoot string
	TargetRoot string
	// IgnoreFile overrides <SourceRoot>/.assetignore when set.
	IgnoreFile string
	// DryRun classifies every file without creating directories or files.
	DryRun bool
}

func (o Options) ignoreFilePath() string {
	if o.IgnoreFile != "" {
		return o.IgnoreFile
	}
	return filepath.Join(o.SourceRoot, IgnoreFileName)
}
