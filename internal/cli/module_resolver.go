package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/utils"
)

type moduleInfo struct {
	dir  string
	path string
}

// ModuleResolver maps package directories to import paths.
type ModuleResolver struct {
	customModule string
	modules      map[string]moduleInfo
}

// NewModuleResolver creates a resolver. A non-empty customModule replaces
// the module path declared in go.mod.
func NewModuleResolver(customModule string) *ModuleResolver {
	return &ModuleResolver{
		customModule: customModule,
		modules:      make(map[string]moduleInfo),
	}
}

// ResolveModule returns the root directory and module path of the module
// containing dir.
func (r *ModuleResolver) ResolveModule(dir string) (string, string, error) {
	goMod, err := utils.FindGoModFile(dir)
	if err != nil {
		e := errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module name", err)
		e.WithSuggestions("run relay inside a Go module", "pass -module explicitly")
		return "", "", e
	}
	if m, ok := r.modules[goMod]; ok {
		return m.dir, m.path, nil
	}

	path := r.customModule
	if path == "" {
		path, err = utils.ParseModuleName(goMod)
		if err != nil {
			return "", "", errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module name", err)
		}
	}
	m := moduleInfo{dir: filepath.Dir(goMod), path: path}
	r.modules[goMod] = m
	return m.dir, m.path, nil
}

// BuildPackagePath returns the import path of the package in packageDir.
func (r *ModuleResolver) BuildPackagePath(packageDir string) (string, error) {
	absDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", packageDir, err)
	}
	moduleDir, modulePath, err := r.ResolveModule(absDir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(moduleDir, absDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Newf(errors.ScanErrorCode, "%s is outside module %s", packageDir, modulePath)
	}
	if rel == "." {
		return modulePath, nil
	}
	return fmt.Sprintf("%s/%s", modulePath, filepath.ToSlash(rel)), nil
}
