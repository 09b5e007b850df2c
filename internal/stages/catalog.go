package stages

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/prompts"
)

// Default models per provider. The heavy model carries every writing stage;
// the critique stage deliberately runs on the other provider for a varied
// editorial perspective.
const (
	defaultGeminiModel = "gemini-2.5-pro"
	defaultOpenAIModel = "gpt-4o-2024-11-20"
)

// StageConfig is an immutable description of one pipeline phase.
// UserTemplate carries {{.Name}} placeholders substituted at call time.
type StageConfig struct {
	Name         string       `validate:"required"`
	Description  string       `validate:"required"`
	System       string       `validate:"required"`
	UserTemplate string       `validate:"required"`
	Temperature  float32      `validate:"gte=0,lte=2"`
	Provider     llm.Provider `validate:"required,oneof=gemini openai"`
	Model        string       `validate:"required"`
}

// DraftVariant configures one fan-out branch of the draft stage.
type DraftVariant struct {
	Label       string       `validate:"required"`
	Provider    llm.Provider `validate:"required,oneof=gemini openai"`
	Model       string       `validate:"required"`
	Temperature float32      `validate:"gte=0,lte=2"`
}

// Catalog is the full, validated stage configuration for the pipeline.
type Catalog struct {
	research     map[LengthPreset]StageConfig
	draft        map[LengthPreset]StageConfig
	judge        StageConfig
	critique     StageConfig
	enhancements []StageConfig
	variants     []DraftVariant
}

// Load builds the catalog from the embedded templates and validates every
// stage: required fields present, temperature in range, provider recognized,
// and each template carrying the placeholders its stage substitutes.
func Load() (*Catalog, error) {
	c := &Catalog{
		research: make(map[LengthPreset]StageConfig),
		draft:    make(map[LengthPreset]StageConfig),
	}

	researchSystem, err := prompts.Get("research.json", "system")
	if err != nil {
		return nil, err
	}
	researchUser, err := prompts.Get("research.json", "user")
	if err != nil {
		return nil, err
	}
	draftSystem, err := prompts.Get("draft.json", "system")
	if err != nil {
		return nil, err
	}
	draftUser, err := prompts.Get("draft.json", "user")
	if err != nil {
		return nil, err
	}

	// Length bounds are baked into the per-preset templates up front;
	// only run-time inputs (topic, research) remain as placeholders.
	for _, preset := range Presets() {
		l := lengths[preset]
		sizing := map[string]string{
			"Minutes":  strconv.Itoa(l.Minutes),
			"WordsMin": strconv.Itoa(l.WordsMin),
			"WordsMax": strconv.Itoa(l.WordsMax),
		}
		c.research[preset] = StageConfig{
			Name:         "Stage 0: Research Gathering",
			Description:  "Collects key facts, studies, figures, debates, and historical milestones on the topic",
			System:       researchSystem,
			UserTemplate: prompts.Format(researchUser, sizing),
			Temperature:  0.4,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		}
		c.draft[preset] = StageConfig{
			Name:         "Stage 1: Initial Script",
			Description:  fmt.Sprintf("Creates the foundational script (~%d-%d words)", l.WordsMin, l.WordsMax),
			System:       draftSystem,
			UserTemplate: prompts.Format(draftUser, sizing),
			Temperature:  0.9,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		}
	}

	c.judge = StageConfig{
		Name:         "Judge: Select Best Draft",
		Description:  "Evaluates the parallel drafts and selects the strongest one",
		System:       prompts.MustGet("judge.json", "system"),
		UserTemplate: prompts.MustGet("judge.json", "user"),
		Temperature:  0.2,
		Provider:     llm.ProviderGemini,
		Model:        defaultGeminiModel,
	}

	c.critique = StageConfig{
		Name:         "Editorial Critique",
		Description:  "Diagnoses weaknesses in the current text before the next enhancement pass",
		System:       prompts.MustGet("critique.json", "system"),
		UserTemplate: prompts.MustGet("critique.json", "user"),
		Temperature:  0.3,
		Provider:     llm.ProviderOpenAI,
		Model:        defaultOpenAIModel,
	}

	c.enhancements = []StageConfig{
		{
			Name:         "Stage 2: Artistic & Rhetorical Enhancement",
			Description:  "Enhances with artistic flair, rhetorical devices, and deeper insights",
			System:       prompts.MustGet("enhance.json", "artistic_system"),
			UserTemplate: prompts.MustGet("enhance.json", "artistic_user"),
			Temperature:  0.7,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		},
		{
			Name:         "Stage 3: Academic Depth",
			Description:  "Weaves in theoretical frameworks, experiments, and key discoveries",
			System:       prompts.MustGet("enhance.json", "academic_system"),
			UserTemplate: prompts.MustGet("enhance.json", "academic_user"),
			Temperature:  0.5,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		},
		{
			Name:         "Stage 4: Humanization",
			Description:  "Adds natural rhythm, imperfections, subtext, and human voice",
			System:       prompts.MustGet("enhance.json", "humanize_system"),
			UserTemplate: prompts.MustGet("enhance.json", "humanize_user"),
			Temperature:  0.8,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		},
		{
			Name:         "Stage 5: Final Polish",
			Description:  "Line-by-line refinement, restoring scientific rigor with human tone",
			System:       prompts.MustGet("enhance.json", "polish_system"),
			UserTemplate: prompts.MustGet("enhance.json", "polish_user"),
			Temperature:  0.3,
			Provider:     llm.ProviderGemini,
			Model:        defaultGeminiModel,
		},
	}

	c.variants = []DraftVariant{
		{Label: "Draft A (Gemini Pro, high creativity)", Provider: llm.ProviderGemini, Model: defaultGeminiModel, Temperature: 0.95},
		{Label: "Draft B (Gemini Pro, balanced)", Provider: llm.ProviderGemini, Model: defaultGeminiModel, Temperature: 0.7},
		{Label: "Draft C (GPT-4o, different perspective)", Provider: llm.ProviderOpenAI, Model: defaultOpenAIModel, Temperature: 0.85},
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Research returns the research stage for a preset.
func (c *Catalog) Research(p LengthPreset) (StageConfig, error) {
	cfg, ok := c.research[p]
	if !ok {
		return StageConfig{}, fmt.Errorf("unknown length preset %q", p)
	}
	return cfg, nil
}

// Draft returns the draft stage for a preset.
func (c *Catalog) Draft(p LengthPreset) (StageConfig, error) {
	cfg, ok := c.draft[p]
	if !ok {
		return StageConfig{}, fmt.Errorf("unknown length preset %q", p)
	}
	return cfg, nil
}

// Judge returns the fixed judge stage.
func (c *Catalog) Judge() StageConfig { return c.judge }

// Critique returns the fixed critique stage template.
func (c *Catalog) Critique() StageConfig { return c.critique }

// Enhancements returns the ordered enhancement stages.
func (c *Catalog) Enhancements() []StageConfig {
	out := make([]StageConfig, len(c.enhancements))
	copy(out, c.enhancements)
	return out
}

// Variants returns the fixed ordered list of draft fan-out variants.
func (c *Catalog) Variants() []DraftVariant {
	out := make([]DraftVariant, len(c.variants))
	copy(out, c.variants)
	return out
}

func (c *Catalog) validate() error {
	v := validator.New()

	for _, preset := range Presets() {
		if err := v.Struct(lengths[preset]); err != nil {
			return fmt.Errorf("invalid length preset %q: %w", preset, err)
		}
		if err := validateStage(v, c.research[preset], "Topic"); err != nil {
			return err
		}
		if err := validateStage(v, c.draft[preset], "Topic", "Research"); err != nil {
			return err
		}
	}
	if err := validateStage(v, c.judge, "Topic", "Drafts"); err != nil {
		return err
	}
	if err := validateStage(v, c.critique, "Topic", "CompletedStage", "NextStage", "Text"); err != nil {
		return err
	}
	for _, e := range c.enhancements {
		if err := validateStage(v, e, "Topic", "Research", "Critique", "PreviousOutput"); err != nil {
			return err
		}
	}
	for _, dv := range c.variants {
		if err := v.Struct(dv); err != nil {
			return fmt.Errorf("invalid draft variant %q: %w", dv.Label, err)
		}
	}
	return nil
}

// validateStage checks field constraints and that the user template carries
// every placeholder its stage will substitute at run time.
func validateStage(v *validator.Validate, cfg StageConfig, required ...string) error {
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid stage %q: %w", cfg.Name, err)
	}

	present := make(map[string]bool)
	for _, name := range prompts.Placeholders(cfg.UserTemplate) {
		present[name] = true
	}
	for _, name := range required {
		if !present[name] {
			return fmt.Errorf("stage %q template is missing required placeholder {{.%s}}", cfg.Name, name)
		}
	}
	return nil
}
