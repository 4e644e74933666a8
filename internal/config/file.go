package config

// File represents the structure of the .empreport configuration file.
// All fields are optional; unset fields keep their flag or default value.
// CLI flags that were explicitly set take precedence over file values.
type File struct {
	// Input is the CSV file to read when no positional argument is given.
	Input string `yaml:"input,omitempty"`

	// Output is the report file to write when --output is not given.
	Output string `yaml:"output,omitempty"`

	// Title overrides the default report title.
	Title string `yaml:"title,omitempty"`

	// Strict aborts the run on the first malformed row instead of
	// skipping it with a warning.
	Strict bool `yaml:"strict,omitempty"`
}

// Apply copies the file's settings onto cfg.
// Only non-zero values are applied, so an empty or partial configuration
// file leaves the existing defaults untouched. Callers enforce flag
// precedence by applying explicitly-set flags after this.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Input != "" {
		cfg.InputPath = f.Input
	}
	if f.Output != "" {
		cfg.OutputPath = f.Output
	}
	if f.Title != "" {
		cfg.Title = f.Title
	}
	if f.Strict {
		cfg.Strict = true
	}
}
