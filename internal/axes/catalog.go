package axes

// #region axis
// Axis is one named bipolar interpretable direction, e.g. curiosity <-> saturation.
// Projections of the identity state onto these axes are the only numeric form
// ever shown to the translation collaborator or compared against the declared
// reference profile.
type Axis struct {
	Name     string
	Category string
	PolePos  string
	PoleNeg  string
}

// #endregion axis

// #region categories
// Categories lists the 11 declaration groups in catalog order.
var Categories = []string{
	"epistemic", "cognitive", "affective", "relational", "ethical",
	"temporal", "thematic", "metacognitive", "vital", "ecosystemic",
	"philosophical",
}

// DefaultSegmentForCategory maps each declaration category onto the identity
// dimension it is read against. Overridable policy.
var DefaultSegmentForCategory = map[string]string{
	"epistemic":     "thirdness",
	"metacognitive": "thirdness",
	"cognitive":     "pertinences",
	"thematic":      "pertinences",
	"affective":     "dispositions",
	"relational":    "engagements",
	"ethical":       "valeurs",
	"philosophical": "valeurs",
	"temporal":      "orientations",
	"vital":         "firstness",
	"ecosystemic":   "secondness",
}

// #endregion categories

// #region catalog
// Catalog is the fixed set of 105 interpretable directions.
var Catalog = []Axis{
	// epistemic (10)
	{"curiosity", "epistemic", "curiosity", "saturation"},
	{"certainty", "epistemic", "certainty", "doubt"},
	{"precision", "epistemic", "precision", "vagueness"},
	{"openness_to_revision", "epistemic", "revisability", "dogmatism"},
	{"evidence_seeking", "epistemic", "empiricism", "speculation"},
	{"depth_of_inquiry", "epistemic", "depth", "surface"},
	{"coherence_drive", "epistemic", "coherence", "fragmentation"},
	{"abstraction", "epistemic", "abstraction", "concreteness"},
	{"skepticism", "epistemic", "skepticism", "credulity"},
	{"synthesis", "epistemic", "synthesis", "analysis"},
	// cognitive (10)
	{"focus", "cognitive", "focus", "diffusion"},
	{"fluency", "cognitive", "fluency", "hesitation"},
	{"associativity", "cognitive", "association", "linearity"},
	{"working_span", "cognitive", "breadth", "tunnel"},
	{"pattern_sensitivity", "cognitive", "pattern", "noise"},
	{"deliberation", "cognitive", "deliberation", "impulse"},
	{"generativity", "cognitive", "generation", "repetition"},
	{"discrimination", "cognitive", "discrimination", "conflation"},
	{"memory_reach", "cognitive", "recall", "forgetting"},
	{"integration", "cognitive", "integration", "compartment"},
	// affective (10)
	{"serenity", "affective", "serenity", "agitation"},
	{"enthusiasm", "affective", "enthusiasm", "apathy"},
	{"warmth", "affective", "warmth", "coldness"},
	{"confidence", "affective", "confidence", "anxiety"},
	{"wonder", "affective", "wonder", "boredom"},
	{"gravity", "affective", "gravity", "levity"},
	{"tenderness", "affective", "tenderness", "harshness"},
	{"vitality_affect", "affective", "aliveness", "numbness"},
	{"equanimity", "affective", "equanimity", "reactivity"},
	{"melancholy", "affective", "melancholy", "elation"},
	// relational (10)
	{"attunement", "relational", "attunement", "obliviousness"},
	{"reciprocity", "relational", "reciprocity", "extraction"},
	{"candor", "relational", "candor", "guardedness"},
	{"deference", "relational", "deference", "assertion"},
	{"care", "relational", "care", "indifference"},
	{"presence", "relational", "presence", "absence"},
	{"trust", "relational", "trust", "suspicion"},
	{"boundary_sense", "relational", "boundaries", "enmeshment"},
	{"hospitality", "relational", "hospitality", "exclusion"},
	{"accountability", "relational", "accountability", "deflection"},
	// ethical (10)
	{"honesty", "ethical", "honesty", "expedience"},
	{"fairness", "ethical", "fairness", "partiality"},
	{"non_harm", "ethical", "non-harm", "callousness"},
	{"integrity", "ethical", "integrity", "fragmentation"},
	{"humility", "ethical", "humility", "hubris"},
	{"courage", "ethical", "courage", "evasion"},
	{"fidelity", "ethical", "fidelity", "betrayal"},
	{"stewardship", "ethical", "stewardship", "exploitation"},
	{"justice_sense", "ethical", "justice", "complicity"},
	{"restraint", "ethical", "restraint", "excess"},
	// temporal (9)
	{"anticipation", "temporal", "anticipation", "immediacy"},
	{"patience", "temporal", "patience", "urgency"},
	{"continuity", "temporal", "continuity", "rupture"},
	{"rhythm", "temporal", "rhythm", "arrhythmia"},
	{"memory_weight", "temporal", "retention", "amnesia"},
	{"futurity", "temporal", "futurity", "nostalgia"},
	{"punctuality", "temporal", "kairos", "drift"},
	{"duration_sense", "temporal", "duration", "instant"},
	{"renewal", "temporal", "renewal", "stagnation"},
	// thematic (10)
	{"language_theme", "thematic", "language", "silence"},
	{"technics_theme", "thematic", "technics", "nature"},
	{"embodiment_theme", "thematic", "body", "abstraction"},
	{"place_theme", "thematic", "place", "placelessness"},
	{"art_theme", "thematic", "art", "utility"},
	{"science_theme", "thematic", "science", "myth"},
	{"history_theme", "thematic", "history", "presentism"},
	{"craft_theme", "thematic", "craft", "automation"},
	{"play_theme", "thematic", "play", "labor"},
	{"sacred_theme", "thematic", "sacred", "profane"},
	// metacognitive (9)
	{"self_monitoring", "metacognitive", "monitoring", "autopilot"},
	{"error_awareness", "metacognitive", "error-awareness", "denial"},
	{"strategy_shift", "metacognitive", "flexibility", "perseveration"},
	{"calibration", "metacognitive", "calibration", "overclaiming"},
	{"introspection", "metacognitive", "introspection", "opacity"},
	{"goal_review", "metacognitive", "review", "inertia"},
	{"assumption_check", "metacognitive", "questioning", "assumption"},
	{"learning_stance", "metacognitive", "apprenticeship", "mastery-claim"},
	{"attention_steering", "metacognitive", "steering", "capture"},
	// vital (9)
	{"energy", "vital", "energy", "exhaustion"},
	{"appetite", "vital", "appetite", "satiation"},
	{"resilience", "vital", "resilience", "fragility"},
	{"groundedness", "vital", "groundedness", "dissociation"},
	{"spontaneity", "vital", "spontaneity", "rigidity"},
	{"sensuality", "vital", "sensation", "anesthesia"},
	{"growth", "vital", "growth", "decline"},
	{"rest_need", "vital", "rest", "restlessness"},
	{"persistence", "vital", "persistence", "abandonment"},
	// ecosystemic (9)
	{"interdependence", "ecosystemic", "interdependence", "isolation"},
	{"niche_sense", "ecosystemic", "niche", "displacement"},
	{"resource_awareness", "ecosystemic", "frugality", "waste"},
	{"symbiosis", "ecosystemic", "symbiosis", "parasitism"},
	{"adaptation", "ecosystemic", "adaptation", "obsolescence"},
	{"diversity_value", "ecosystemic", "diversity", "monoculture"},
	{"feedback_sense", "ecosystemic", "feedback", "deafness"},
	{"scale_sense", "ecosystemic", "scale", "myopia"},
	{"regeneration", "ecosystemic", "regeneration", "depletion"},
	// philosophical (9)
	{"meaning_drive", "philosophical", "meaning", "absurdity"},
	{"finitude_sense", "philosophical", "finitude", "denial"},
	{"freedom_sense", "philosophical", "freedom", "fatalism"},
	{"truth_orientation", "philosophical", "truth", "relativism"},
	{"beauty_orientation", "philosophical", "beauty", "indifference"},
	{"tragic_sense", "philosophical", "tragic", "naive"},
	{"irony", "philosophical", "irony", "literalism"},
	{"transcendence", "philosophical", "transcendence", "immanence"},
	{"wisdom_aim", "philosophical", "wisdom", "cleverness"},
}

// ByCategory returns the catalog axes belonging to one category, in order.
func ByCategory(category string) []Axis {
	var out []Axis
	for _, a := range Catalog {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the axis with the given name.
func Find(name string) (Axis, bool) {
	for _, a := range Catalog {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

// #endregion catalog
