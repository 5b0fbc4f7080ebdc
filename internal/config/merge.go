package config

// Merge merges a loaded config on top of defaults. Scalar fields in loaded
// override the defaults when set; list fields replace the defaults when
// non-empty. Rules and Ignore come from the loaded config only.
func Merge(defaults, loaded *Config) *Config {
	out := *defaults
	out.Mine.Queries = append([]string(nil), defaults.Mine.Queries...)
	out.Embed.Models = append([]string(nil), defaults.Embed.Models...)
	if loaded == nil {
		return &out
	}

	out.Ignore = loaded.Ignore
	out.Rules = loaded.Rules

	m := loaded.Mine
	str(&out.Mine.Out, m.Out)
	list(&out.Mine.Queries, m.Queries)
	list(&out.Mine.Repos, m.Repos)
	num(&out.Mine.MinStars, m.MinStars)
	num(&out.Mine.MaxRepos, m.MaxRepos)
	num(&out.Mine.Workers, m.Workers)
	str(&out.Mine.CloneDir, m.CloneDir)
	str(&out.Mine.IndexDir, m.IndexDir)
	list(&out.Mine.Exclude, m.Exclude)
	str(&out.Mine.GitHubURL, m.GitHubURL)
	if m.RequestsPerS > 0 {
		out.Mine.RequestsPerS = m.RequestsPerS
	}
	out.Mine.Upload = out.Mine.Upload || m.Upload

	str(&out.Curate.Catalog, loaded.Curate.Catalog)
	str(&out.Curate.Out, loaded.Curate.Out)
	str(&out.Curate.CloneDir, loaded.Curate.CloneDir)

	str(&out.Validate.Dataset, loaded.Validate.Dataset)
	str(&out.Validate.Export, loaded.Validate.Export)
	str(&out.Validate.HTML, loaded.Validate.HTML)
	num(&out.Validate.Workers, loaded.Validate.Workers)

	e := loaded.Embed
	str(&out.Embed.Dataset, e.Dataset)
	str(&out.Embed.Output, e.Output)
	str(&out.Embed.BaseURL, e.BaseURL)
	list(&out.Embed.Models, e.Models)
	num(&out.Embed.MaxChars, e.MaxChars)
	num(&out.Embed.ChunkSize, e.ChunkSize)
	num(&out.Embed.ChunkOverlap, e.ChunkOverlap)
	str(&out.Embed.WeaviateURL, e.WeaviateURL)
	str(&out.Embed.WeaviateClass, e.WeaviateClass)

	if loaded.Storage != (StorageConfig{}) {
		out.Storage = loaded.Storage
	}
	return &out
}

func str(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func num(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func list(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}
