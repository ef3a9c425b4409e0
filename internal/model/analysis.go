package model

// Analysis is the normalized output of the vision model.
type Analysis struct {
	Description string     `json:"description"`
	Tags        StringList `json:"tags"`
	Colors      StringList `json:"colors"`
}

// AnalysisOutcome is the result of a successful analyze-and-persist run.
type AnalysisOutcome struct {
	Asset    ImageAsset
	Metadata ImageMetadata
	Analysis Analysis
}

// Annotation is the tagged result of the best-effort annotation step: either
// the asset was annotated, or it was left bare with a reason. Annotation
// failures are never fatal to an upload.
type Annotation struct {
	Annotated bool
	Reason    string
	Outcome   AnalysisOutcome
}

// Annotated wraps a successful outcome.
func Annotated(out AnalysisOutcome) Annotation {
	return Annotation{Annotated: true, Outcome: out}
}

// Unannotated records why annotation was skipped or failed.
func Unannotated(reason string) Annotation {
	return Annotation{Reason: reason}
}
