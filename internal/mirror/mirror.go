package mirror

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Action classifies what a mirror run did with one file.
type Action string

const (
	ActionIgnored Action = "ignored"
	ActionCopied  Action = "copied"
	ActionSkipped Action = "skipped (up to date)"
	ActionFailed  Action = "failed"
)

// ErrSourceMissing is returned when the tree or file to copy from does not exist.
var ErrSourceMissing = errors.New("source does not exist")

// Entry records the outcome for a single source file.
type Entry struct {
	Source string
	Target string
	Action Action
}

// Result summarizes a mirror run.
type Result struct {
	Counters map[Action]int
	Entries  []Entry
}

// Count returns how many files ended with the given action.
func (r Result) Count(action Action) int {
	return r.Counters[action]
}

func (r *Result) record(entry Entry) {
	r.Counters[entry.Action]++
	r.Entries = append(r.Entries, entry)
}

// Mirror copies every non-ignored, stale file under options.SourceRoot to
// the same relative path under options.TargetRoot, carrying its
// modification time along. A failure on one file is logged and counted;
// the walk continues.
func Mirror(options Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := Result{Counters: map[Action]int{
		ActionIgnored: 0,
		ActionCopied:  0,
		ActionSkipped: 0,
		ActionFailed:  0,
	}}

	rootInfo, err := os.Stat(options.SourceRoot)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Error("source directory does not exist", zap.String("source", options.SourceRoot))
		return result, errors.Wrapf(ErrSourceMissing, "source directory %s", options.SourceRoot)
	}
	if err != nil {
		logger.Error("stat source directory", zap.String("source", options.SourceRoot), zap.Error(err))
		return result, errors.Wrapf(err, "stat source directory %s", options.SourceRoot)
	}
	if !rootInfo.IsDir() {
		logger.Error("source is not a directory", zap.String("source", options.SourceRoot))
		return result, errors.Errorf("source %s is not a directory", options.SourceRoot)
	}

	// WalkDir does not follow a symlinked root
	walkRoot, err := filepath.EvalSymlinks(options.SourceRoot)
	if err != nil {
		logger.Error("resolve source directory", zap.String("source", options.SourceRoot), zap.Error(err))
		return result, errors.Wrapf(err, "resolve source directory %s", options.SourceRoot)
	}

	ignoreFile := options.ignoreFilePath()
	patterns, err := LoadIgnorePatterns(ignoreFile)
	if err != nil {
		logger.Error("read ignore file", zap.String("path", ignoreFile), zap.Error(err))
		return result, err
	}
	matcher := NewMatcher(patterns)
	logger.Debug("loaded ignore patterns", zap.String("path", ignoreFile), zap.Strings("patterns", patterns))

	err = filepath.WalkDir(walkRoot, func(currentPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d == nil || currentPath == walkRoot {
				return walkErr
			}
			logger.Error("read directory", zap.String("path", currentPath), zap.Error(walkErr))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(walkRoot, currentPath)
		if relErr != nil {
			return relErr
		}
		targetPath := filepath.Join(options.TargetRoot, rel)

		if d.IsDir() {
			if options.DryRun {
				return nil
			}
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				logger.Error("create directory", zap.String("target", targetPath), zap.Error(err))
				return filepath.SkipDir
			}
			return nil
		}

		if entry := mirrorFile(currentPath, targetPath, rel, d, matcher, options, logger); entry.Action != "" {
			result.record(entry)
		}
		return nil
	})
	if err != nil {
		logger.Error("walk source directory", zap.String("source", options.SourceRoot), zap.Error(err))
		return result, errors.Wrapf(err, "walk source directory %s", options.SourceRoot)
	}

	logger.Info("mirror completed",
		zap.String("source", options.SourceRoot),
		zap.String("target", options.TargetRoot),
		zap.Int("copied", result.Count(ActionCopied)),
		zap.Int("skipped", result.Count(ActionSkipped)),
		zap.Int("ignored", result.Count(ActionIgnored)),
		zap.Int("failed", result.Count(ActionFailed)),
		zap.Bool("dry_run", options.DryRun),
	)
	return result, nil
}

func mirrorFile(sourcePath, targetPath, rel string, d fs.DirEntry, matcher *Matcher, options Options, logger *zap.Logger) Entry {
	entry := Entry{Source: sourcePath, Target: targetPath}

	if matcher.Match(rel) {
		entry.Action = ActionIgnored
		logger.Info(string(ActionIgnored), zap.String("source", sourcePath))
		return entry
	}

	copyFrom := sourcePath
	switch {
	case d.Type()&fs.ModeSymlink != 0:
		resolved, err := filepath.EvalSymlinks(sourcePath)
		if err != nil {
			return failed(entry, "resolve symlink", err, logger)
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return failed(entry, "stat symlink target", err, logger)
		}
		if !info.Mode().IsRegular() {
			logger.Debug("skip non-file symlink", zap.String("source", sourcePath))
			return entry
		}
		copyFrom = resolved
	case !d.Type().IsRegular():
		logger.Debug("skip special file", zap.String("source", sourcePath))
		return entry
	}

	stale, err := NeedsUpdate(copyFrom, targetPath)
	if err != nil {
		return failed(entry, "check modification time", err, logger)
	}
	if !stale {
		entry.Action = ActionSkipped
		logger.Info(string(ActionSkipped), zap.String("source", sourcePath))
		return entry
	}

	entry.Action = ActionCopied
	if options.DryRun {
		logger.Info("would copy", zap.String("source", sourcePath), zap.String("target", targetPath))
		return entry
	}
	if err := copy.Copy(copyFrom, targetPath, copy.Options{PreserveTimes: true}); err != nil {
		return failed(entry, "copy file", err, logger)
	}
	logger.Info(string(ActionCopied), zap.String("source", sourcePath), zap.String("target", targetPath))
	return entry
}

func failed(entry Entry, what string, err error, logger *zap.Logger) Entry {
	entry.Action = ActionFailed
	logger.Error(what, zap.String("source", entry.Source), zap.String("target", entry.Target), zap.Error(err))
	return entry
}
