// Package langs classifies repository files by language and directory.
package langs

import (
	"path"
	"slices"
	"strings"

	"github.com/huangsam/repolens/schema"
)

// OtherLanguage labels files without an extension.
const OtherLanguage = "Other"

// extensionLanguages maps lowercase extensions (without the dot) to labels.
var extensionLanguages = map[string]string{
	"js":    "JavaScript",
	"ts":    "TypeScript",
	"tsx":   "TypeScript",
	"jsx":   "JavaScript",
	"py":    "Python",
	"java":  "Java",
	"rb":    "Ruby",
	"php":   "PHP",
	"go":    "Go",
	"cs":    "C#",
	"cpp":   "C++",
	"c":     "C",
	"h":     "C/C++",
	"hpp":   "C++",
	"rs":    "Rust",
	"kt":    "Kotlin",
	"swift": "Swift",
	"m":     "Objective-C",
	"scala": "Scala",
	"sh":    "Shell",
	"bash":  "Bash",
	"yml":   "YAML",
	"yaml":  "YAML",
	"json":  "JSON",
	"xml":   "XML",
	"md":    "Markdown",
	"html":  "HTML",
	"css":   "CSS",
	"scss":  "SCSS",
	"sass":  "Sass",
	"vue":   "Vue",
	"sql":   "SQL",
	"r":     "R",
	"dart":  "Dart",
	"lua":   "Lua",
}

// Language returns the label of a file path. Dotfiles such as .gitignore
// have no extension.
func Language(p string) string {
	base := strings.TrimLeft(path.Base(p), ".")
	ext := strings.TrimPrefix(path.Ext(base), ".")
	if ext == "" {
		return OtherLanguage
	}
	if lang, ok := extensionLanguages[strings.ToLower(ext)]; ok {
		return lang
	}
	return strings.ToUpper(ext)
}

// TopDir returns the first directory segment of a path, or "." for root files.
func TopDir(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return "."
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(dir, "/"), "/")
	if first == "" {
		return "."
	}
	return first
}

// Summarize computes the language breakdown and the top directories of the
// file entries. Directory entries are ignored. topN <= 0 returns every
// distinct directory; ties keep their first-seen order.
func Summarize(entries []schema.TreeEntry, topN int) (schema.LanguageBreakdown, []schema.DirCount) {
	breakdown := schema.LanguageBreakdown{}
	var dirs []schema.DirCount
	dirIndex := map[string]int{}

	for _, e := range entries {
		if e.Kind != schema.FileEntry {
			continue
		}
		lang := Language(e.Path)
		stat := breakdown[lang]
		stat.Files++
		stat.Bytes += e.SizeBytes
		breakdown[lang] = stat

		dir := TopDir(e.Path)
		if i, ok := dirIndex[dir]; ok {
			dirs[i].Count++
			continue
		}
		dirIndex[dir] = len(dirs)
		dirs = append(dirs, schema.DirCount{Name: dir, Count: 1})
	}

	slices.SortStableFunc(dirs, func(a, b schema.DirCount) int {
		return b.Count - a.Count
	})
	if topN > 0 && len(dirs) > topN {
		dirs = dirs[:topN]
	}
	if dirs == nil {
		dirs = []schema.DirCount{}
	}
	return breakdown, dirs
}
