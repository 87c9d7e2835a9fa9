// Package stamp copies an HTML page into the build directory and points its
// script reference at the project's compiled bundle.
package stamp

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/copy_assets/internal/mirror"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ScriptToken is the literal replaced in the stamped page.
const ScriptToken = "index.js"

// ErrSourceMissing is returned when the template does not exist.
var ErrSourceMissing = mirror.ErrSourceMissing

// writeFile is replaced in tests to fail the rewrite after a good copy.
var writeFile = os.WriteFile

// Options configures a stamping run.
type Options struct {
	SourcePath  string
	TargetPath  string
	ProjectName string
}

// Result reports what a stamping run did.
type Result struct {
	Action       mirror.Action
	Replacements int
}

// ScriptName is the file the token is rewritten to.
func (o Options) ScriptName() string {
	return o.ProjectName + ".js"
}

// Stamp copies options.SourcePath to options.TargetPath when the target is
// stale, then rewrites every ScriptToken in the copy. The copy is a fresh
// write, so a later run against the same source sees it as up to date.
func Stamp(options Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var result Result

	info, err := os.Stat(options.SourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Error("template does not exist", zap.String("source", options.SourcePath))
		return result, errors.Wrapf(ErrSourceMissing, "template %s", options.SourcePath)
	}
	if err != nil {
		logger.Error("stat template", zap.String("source", options.SourcePath), zap.Error(err))
		return result, errors.Wrapf(err, "stat template %s", options.SourcePath)
	}
	if !info.Mode().IsRegular() {
		logger.Error("template is not a regular file", zap.String("source", options.SourcePath))
		return result, errors.Errorf("template %s is not a regular file", options.SourcePath)
	}

	stale, err := mirror.NeedsUpdate(options.SourcePath, options.TargetPath)
	if err != nil {
		logger.Error("check modification time", zap.String("source", options.SourcePath), zap.Error(err))
		return result, err
	}
	if !stale {
		result.Action = mirror.ActionSkipped
		logger.Info(string(mirror.ActionSkipped), zap.String("source", options.SourcePath))
		return result, nil
	}

	// copy the page itself, never a link back to it
	copyFrom, err := filepath.EvalSymlinks(options.SourcePath)
	if err != nil {
		logger.Error("resolve template", zap.String("source", options.SourcePath), zap.Error(err))
		return result, errors.Wrapf(err, "resolve template %s", options.SourcePath)
	}
	if err := copy.Copy(copyFrom, options.TargetPath); err != nil {
		logger.Error("copy template", zap.String("source", options.SourcePath), zap.String("target", options.TargetPath), zap.Error(err))
		return result, errors.Wrapf(err, "copy template %s to %s", options.SourcePath, options.TargetPath)
	}
	result.Action = mirror.ActionCopied
	logger.Info(string(mirror.ActionCopied), zap.String("source", options.SourcePath), zap.String("target", options.TargetPath))

	n, err := rewriteScriptName(options.TargetPath, options.ScriptName())
	if err != nil {
		logger.Error("update template", zap.String("target", options.TargetPath), zap.Error(err))
		return result, err
	}
	result.Replacements = n
	logger.Info("updated template",
		zap.String("target", options.TargetPath),
		zap.String("from", ScriptToken),
		zap.String("to", options.ScriptName()),
		zap.Int("replacements", n),
	)
	return result, nil
}

func rewriteScriptName(path string, scriptName string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat stamped template %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "read stamped template %s", path)
	}
	content := string(data)
	n := strings.Count(content, ScriptToken)
	if n == 0 {
		return 0, nil
	}
	updated := strings.ReplaceAll(content, ScriptToken, scriptName)
	if err := writeFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return 0, errors.Wrapf(err, "write stamped template %s", path)
	}
	return n, nil
}
