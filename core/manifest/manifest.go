// Package manifest parses dependency manifests of the supported ecosystems.
package manifest

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// LatestVersion is recorded when a manifest names a package without a version.
const LatestVersion = "latest"

// KnownManifests maps each ecosystem to its well-known root manifest file.
var KnownManifests = map[schema.Ecosystem]string{
	schema.NPM:    "package.json",
	schema.Pip:    "requirements.txt",
	schema.Maven:  "pom.xml",
	schema.Golang: "go.mod",
	schema.Ruby:   "Gemfile",
}

var (
	requirementLine = regexp.MustCompile(`^([a-zA-Z0-9\-_]+)([>=<~!]=?.*)?$`)
	pomDependency   = regexp.MustCompile(`<dependency>[\s\S]*?</dependency>`)
	pomGroupID      = regexp.MustCompile(`<groupId>(.*?)</groupId>`)
	pomArtifactID   = regexp.MustCompile(`<artifactId>(.*?)</artifactId>`)
	pomVersion      = regexp.MustCompile(`<version>(.*?)</version>`)
	goModLine       = regexp.MustCompile(`^([A-Za-z0-9._\-/]+)\s+v?([0-9][^\s]+)$`)
	gemLine         = regexp.MustCompile(`gem\s+['"]([^'"]+)['"]`)
)

// goDirectives are go.mod keywords whose lines look like "name version" pairs.
var goDirectives = map[string]struct{}{
	"go":        {},
	"toolchain": {},
	"retract":   {},
	"godebug":   {},
}

// parseFunc fills deps from the raw manifest bytes.
type parseFunc func(raw []byte, deps *schema.EcosystemDeps)

// parsers is the per-ecosystem dispatch table. New ecosystems are added here.
var parsers = map[schema.Ecosystem]parseFunc{
	schema.NPM:    parsePackageJSON,
	schema.Pip:    parseRequirements,
	schema.Maven:  parsePom,
	schema.Golang: parseGoMod,
	schema.Ruby:   parseGemfile,
}

// Parse turns the raw manifest of an ecosystem into a dependency mapping.
// It never fails: absent manifests, unknown ecosystems and malformed input
// all yield an empty mapping.
func Parse(kind schema.Ecosystem, raw []byte, present bool) schema.EcosystemDeps {
	deps := schema.EcosystemDeps{
		Manifest:     KnownManifests[kind],
		Present:      present,
		Dependencies: map[string]string{},
	}
	if kind == schema.NPM {
		deps.DevDependencies = map[string]string{}
	}
	parse, ok := parsers[kind]
	if !ok || !present || len(raw) == 0 {
		return deps
	}
	parse(raw, &deps)
	return deps
}

// ParseAll parses every ecosystem, substituting an empty mapping for
// manifests that were not acquired.
func ParseAll(manifests map[schema.Ecosystem]schema.Manifest) schema.DependencySet {
	set := make(schema.DependencySet, len(schema.AllEcosystems))
	for _, kind := range schema.AllEcosystems {
		m := manifests[kind]
		set[kind] = Parse(kind, m.Content, m.Present)
	}
	return set
}

// packageJSON is the subset of package.json that matters here.
type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(raw []byte, deps *schema.EcosystemDeps) {
	var pj packageJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		contract.LogWarn(fmt.Sprintf("Error parsing %s", KnownManifests[schema.NPM]), err)
		return
	}
	deps.Name = pj.Name
	deps.Version = pj.Version
	maps.Copy(deps.Dependencies, pj.Dependencies)
	maps.Copy(deps.DevDependencies, pj.DevDependencies)
}

func parseRequirements(raw []byte, deps *schema.EcosystemDeps) {
	for line := range strings.Lines(string(raw)) {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		m := requirementLine.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		version := strings.TrimSpace(m[2])
		if version == "" {
			version = LatestVersion
		}
		deps.Dependencies[m[1]] = version
	}
}

// parsePom extracts complete <dependency> blocks. A block needs both a
// groupId and an artifactId; unclosed blocks never match.
func parsePom(raw []byte, deps *schema.EcosystemDeps) {
	for _, block := range pomDependency.FindAllString(string(raw), -1) {
		group := pomGroupID.FindStringSubmatch(block)
		artifact := pomArtifactID.FindStringSubmatch(block)
		if group == nil || artifact == nil {
			continue
		}
		version := LatestVersion
		if v := pomVersion.FindStringSubmatch(block); v != nil && strings.TrimSpace(v[1]) != "" {
			version = strings.TrimSpace(v[1])
		}
		key := strings.TrimSpace(group[1]) + ":" + strings.TrimSpace(artifact[1])
		deps.Dependencies[key] = version
	}
}

func parseGoMod(raw []byte, deps *schema.EcosystemDeps) {
	for line := range strings.Lines(string(raw)) {
		t := line
		if i := strings.Index(t, "//"); i >= 0 {
			t = t[:i]
		}
		t = strings.TrimSpace(t)
		t = strings.TrimSpace(strings.TrimPrefix(t, "require "))
		m := goModLine.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if _, ok := goDirectives[m[1]]; ok {
			continue
		}
		deps.Dependencies[m[1]] = m[2]
	}
}

func parseGemfile(raw []byte, deps *schema.EcosystemDeps) {
	for line := range strings.Lines(string(raw)) {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "#") {
			continue
		}
		if m := gemLine.FindStringSubmatch(t); m != nil {
			deps.Dependencies[m[1]] = LatestVersion
		}
	}
}
