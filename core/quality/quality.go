// Package quality evaluates heuristic quality rules over a repository listing.
package quality

import (
	"fmt"
	"strings"

	"github.com/huangsam/repolens/schema"
	"github.com/src-d/enry/v2"
)

// Rule thresholds.
const (
	LargeRepoFiles       = 5000
	MinTestCoverage      = 10.0
	MaxNPMDependencies   = 100
	readmeFile           = "readme.md"
	contributingFile     = "contributing.md"
	ciRecommendationText = "Set up CI/CD pipeline for automated testing"
)

var (
	// TestIndicators mark a path as test code.
	TestIndicators = []string{"test", "spec", "__tests__"}

	// CIMarkers mark a path as continuous-integration configuration.
	CIMarkers = []string{".github/workflows", ".gitlab-ci", "jenkins"}
)

// Input is what every rule sees.
type Input struct {
	Entries      []schema.TreeEntry
	Dependencies schema.DependencySet
	Metrics      schema.QualityMetrics
}

// Finding is the output of one rule. Empty strings mean nothing to report.
type Finding struct {
	Issue          string
	Recommendation string
}

// Rule is a single named heuristic.
type Rule struct {
	Name  string
	Apply func(in Input) Finding
}

// DefaultRules run in this order.
var DefaultRules = []Rule{
	LargeRepositoryRule,
	TestCoverageRule,
	DependencyBloatRule,
	ReadmeRule,
	ContinuousIntegrationRule,
}

// LargeRepositoryRule flags repositories with more than LargeRepoFiles files.
var LargeRepositoryRule = Rule{
	Name: "large-repository",
	Apply: func(in Input) Finding {
		if in.Metrics.TotalFiles <= LargeRepoFiles {
			return Finding{}
		}
		return Finding{
			Issue:          fmt.Sprintf("Very large repository with %d files", in.Metrics.TotalFiles),
			Recommendation: "Consider modularizing into smaller services or packages",
		}
	},
}

// TestCoverageRule flags a low ratio of test files.
var TestCoverageRule = Rule{
	Name: "test-coverage",
	Apply: func(in Input) Finding {
		if in.Metrics.TestCoveragePercent >= MinTestCoverage {
			return Finding{}
		}
		return Finding{
			Issue:          "Low test coverage detected",
			Recommendation: "Add more unit and integration tests",
		}
	},
}

// DependencyBloatRule flags too many npm production dependencies.
var DependencyBloatRule = Rule{
	Name: "dependency-bloat",
	Apply: func(in Input) Finding {
		count := in.Dependencies[schema.NPM].Count()
		if count <= MaxNPMDependencies {
			return Finding{}
		}
		return Finding{
			Issue:          fmt.Sprintf("High number of npm dependencies (%d)", count),
			Recommendation: "Review and remove unused dependencies",
		}
	},
}

// ReadmeRule flags a missing root README.
var ReadmeRule = Rule{
	Name: "readme",
	Apply: func(in Input) Finding {
		if in.Metrics.HasReadme {
			return Finding{}
		}
		return Finding{
			Issue:          "Missing README.md file",
			Recommendation: "Add comprehensive documentation",
		}
	},
}

// ContinuousIntegrationRule recommends CI when no marker is present.
var ContinuousIntegrationRule = Rule{
	Name: "continuous-integration",
	Apply: func(in Input) Finding {
		if in.Metrics.HasCI {
			return Finding{}
		}
		return Finding{Recommendation: ciRecommendationText}
	},
}

// Evaluate runs DefaultRules over the listing and dependency set.
func Evaluate(entries []schema.TreeEntry, deps schema.DependencySet) schema.QualityFindings {
	return EvaluateRules(DefaultRules, entries, deps)
}

// EvaluateRules runs rules in order. Rules never see each other's output.
func EvaluateRules(rules []Rule, entries []schema.TreeEntry, deps schema.DependencySet) schema.QualityFindings {
	in := Input{Entries: entries, Dependencies: deps, Metrics: ComputeMetrics(entries)}
	findings := schema.QualityFindings{
		Issues:          []string{},
		Recommendations: []string{},
		Metrics:         in.Metrics,
	}
	for _, rule := range rules {
		f := rule.Apply(in)
		if f.Issue != "" {
			findings.Issues = append(findings.Issues, f.Issue)
		}
		if f.Recommendation != "" {
			findings.Recommendations = append(findings.Recommendations, f.Recommendation)
		}
	}
	return findings
}

// ComputeMetrics derives the raw quality numbers from a listing.
func ComputeMetrics(entries []schema.TreeEntry) schema.QualityMetrics {
	var m schema.QualityMetrics
	for _, e := range entries {
		if containsAny(e.Path, CIMarkers) {
			m.HasCI = true
		}
		if e.Kind != schema.FileEntry {
			continue
		}
		m.TotalFiles++
		if containsAny(e.Path, TestIndicators) {
			m.TestFiles++
		}
		switch strings.ToLower(e.Path) {
		case readmeFile:
			m.HasReadme = true
		case contributingFile:
			m.HasContributing = true
		}
		if enry.IsVendor(e.Path) {
			m.VendoredFiles++
		}
		if enry.IsDocumentation(e.Path) {
			m.DocumentationFiles++
		}
	}
	m.TestCoveragePercent = schema.Percent(m.TestFiles, m.TotalFiles)
	return m
}

func containsAny(p string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(p, n) {
			return true
		}
	}
	return false
}
