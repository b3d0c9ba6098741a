package app

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ludo-technologies/a11yscan/internal/constants"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectOptions selects the HTML files gathered from directories
type CollectOptions struct {
	Recursive        bool
	RespectGitignore bool
	// IncludePatterns and ExcludePatterns use gitignore syntax, relative to each root
	IncludePatterns []string
	ExcludePatterns []string
}

// CollectHTMLFiles collects HTML files from paths. Explicit file arguments are kept
// even when they do not match the include patterns.
func (h *FileHelper) CollectHTMLFiles(paths []string, opts CollectOptions) ([]string, error) {
	var files []string

	exclude := ignore.CompileIgnoreLines(opts.ExcludePatterns...)
	var include *ignore.GitIgnore
	if len(opts.IncludePatterns) > 0 {
		include = ignore.CompileIgnoreLines(opts.IncludePatterns...)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.IsHTMLFile(path) && !exclude.MatchesPath(filepath.Base(path)) {
				files = append(files, path)
			}
			continue
		}

		var gitignore *ignore.GitIgnore
		if opts.RespectGitignore {
			gitignore = loadGitignore(path)
		}

		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(path, filePath)
			if relErr != nil || rel == "." {
				return nil
			}

			if d.IsDir() {
				// Skip excluded directories early
				if !opts.Recursive || exclude.MatchesPath(rel) || (gitignore != nil && gitignore.MatchesPath(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}

			if !h.IsHTMLFile(filePath) || exclude.MatchesPath(rel) {
				return nil
			}
			if gitignore != nil && gitignore.MatchesPath(rel) {
				return nil
			}
			if include != nil && !include.MatchesPath(rel) {
				return nil
			}
			files = append(files, filePath)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// loadGitignore reads the .gitignore at root, if any
func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// IsHTMLFile checks if a file is HTML based on extension
func (h *FileHelper) IsHTMLFile(path string) bool {
	return slices.Contains(constants.HTMLExtensions, strings.ToLower(filepath.Ext(path)))
}

// IsURL reports whether target is an absolute http(s) URL
func IsURL(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SplitTargets separates URL targets from filesystem paths, keeping argument order
func SplitTargets(targets []string) (urls, paths []string) {
	for _, t := range targets {
		if IsURL(t) {
			urls = append(urls, t)
		} else {
			paths = append(paths, t)
		}
	}
	return urls, paths
}
