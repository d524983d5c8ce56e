package project

// Features is the boolean capability row ModeFeatures.for(mode) returns —
// a pure function of TaskMode, modeled as a package-level map literal the
// same way the teacher's changes.FlowRegistry keys a stage list by
// (ChangeType, ChangeSize).
type Features struct {
	SyntaxValidation bool
	DBEnforcement    bool
	HTTPEnforcement  bool
	ScopeEnforcement bool
	FileTracking     bool
	WordCount        bool
	ChapterTracking  bool
	CommandLogging   bool
	Checkpoints      bool
	HealthChecks     bool
	SourceTracking   bool
	FactIndexing     bool
}

// featureTable is the closed table from §4.3. Unknown modes fall back to
// programming (FeaturesFor handles that fallback).
var featureTable = map[TaskMode]Features{
	ModeProgramming: {
		SyntaxValidation: true, DBEnforcement: true, HTTPEnforcement: true,
		ScopeEnforcement: true, FileTracking: true,
	},
	ModeContent: {
		FileTracking: true, WordCount: true, ChapterTracking: true,
	},
	ModeDevops: {
		HTTPEnforcement: true, ScopeEnforcement: true, FileTracking: true,
		CommandLogging: true, Checkpoints: true, HealthChecks: true,
	},
	ModeResearch: {
		SourceTracking: true, FactIndexing: true,
	},
	ModeGeneric: {
		FileTracking: true,
	},
}

// FeaturesFor returns the closed-table feature row for mode, falling back
// to programming for unrecognized mode strings.
func FeaturesFor(mode TaskMode) Features {
	if f, ok := featureTable[mode]; ok {
		return f
	}
	return featureTable[ModeProgramming]
}

// NormalizeMode maps an unrecognized mode string to programming, per
// "Unknown mode strings fall back to programming" (§4.3).
func NormalizeMode(mode string) TaskMode {
	switch TaskMode(mode) {
	case ModeProgramming, ModeContent, ModeDevops, ModeResearch, ModeGeneric:
		return TaskMode(mode)
	default:
		return ModeProgramming
	}
}

// Preamble returns the mode-specific instructions emitted alongside
// set_scope's response.
func Preamble(mode TaskMode) string {
	switch mode {
	case ModeContent:
		return "Content mode: track each chapter file as you write it; " +
			"word_count() reports your running total. No syntax or DB " +
			"enforcement runs in this mode."
	case ModeDevops:
		return "Devops mode: log_command() and checkpoint() after every " +
			"infrastructure change; health_check() before declaring success. " +
			"HTTP and scope enforcement are active; syntax/DB checks are not."
	case ModeResearch:
		return "Research mode: add_source() and index_fact() as you gather " +
			"material. No file, syntax, or DB enforcement runs in this mode."
	case ModeGeneric:
		return "Generic mode: file tracking only. No syntax, DB, or HTTP " +
			"enforcement runs."
	default:
		return "Programming mode: every tracked file is syntax-validated " +
			"unless skip_validation is set; schema-affecting files require a " +
			"fresh db_schema() before they are written; HTTP-relevant changes require at " +
			"least one test_endpoint() call before finish."
	}
}
